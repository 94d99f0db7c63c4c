// Package logger builds the service's *slog.Logger.
//
// New takes functional options for level, format and output. Production
// stages log JSON. Development logs through github.com/lmittmann/tint, which
// prints compact colored lines and highlights error attributes.
// ContextExtractors add request-scoped attributes such as the request id to
// every record written with a context.
//
//	log := logger.New(
//		logger.WithEnvironment(string(app.Env), app.ServiceName),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "subscription renewed",
//		logger.ProfessionalID(sub.ProfessionalID),
//		logger.SubscriptionID(sub.ID),
//	)
//
// Attribute helpers in attr.go keep key names consistent across packages and
// return an empty slog.Attr for zero identifiers so optional fields drop out.
package logger
