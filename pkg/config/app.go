package config

// Environment names the deployment stage the process runs in.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// App holds process-wide settings shared by every command.
type App struct {
	Env         Environment `env:"APP_ENV" envDefault:"development"`
	ServiceName string      `env:"APP_SERVICE_NAME" envDefault:"practiced"`
	LogLevel    string      `env:"APP_LOG_LEVEL" envDefault:"info"`
	PlansFile   string      `env:"APP_PLANS_FILE" envDefault:"config/plans.yaml"`
}

// IsProduction also accepts the short "prod" spelling.
func (a App) IsProduction() bool {
	return a.Env == Production || a.Env == "prod"
}

func (a App) IsDevelopment() bool {
	return a.Env == Development || a.Env == "dev" || a.Env == ""
}
