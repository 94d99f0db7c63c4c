// Package billing turns payment provider activity into subscription state and
// ledger entries.
//
// A PaymentProvider (Paddle in production) creates hosted checkouts and
// verifies webhooks, normalizing each delivery into one of four ProviderEvent
// variants. Processor applies those events:
//
//   - CheckoutCompleted confirms the user's payment flag.
//   - InvoiceSucceeded creates or renews the professional's subscription and
//     appends a Payment to the Ledger. The payment is recorded even when the
//     subscription step fails, with a nil SubscriptionID.
//   - InvoiceFailed is logged only.
//   - SubscriptionDeleted cancels the subscription, best effort.
//
// Usage:
//
//	provider, err := billing.NewPaddleProvider(paddleCfg)
//	if err != nil {
//		return err
//	}
//	guarded := billing.NewBreakerProvider(provider, breakerCfg, log)
//
//	proc := billing.NewProcessor(subs, billing.NewPostgresLedger(pool), billing.NewPostgresConfirmer(pool),
//		billing.WithProviderName(guarded.Name()),
//		billing.WithDeduplicator(billing.NewRedisDeduplicator(rdb, "", 0)),
//		billing.WithCatalog(catalog),
//		billing.WithProcessorLogger(log),
//	)
//
//	event, err := guarded.VerifyAndNormalizeEvent(ctx, body, r.Header.Get(billing.PaddleSignatureHeader))
//	if err != nil {
//		return err
//	}
//	return proc.HandleProviderEvent(ctx, event)
//
// Deliveries are deduplicated by event id when a Deduplicator is configured,
// and the ledger's unique provider reference keeps payments from being
// recorded twice either way.
package billing
