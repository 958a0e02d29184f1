package subscription

import "time"

// DefaultURL is the hosted unsubscribe list.
const DefaultURL = "https://seet25.sw-conf.com/subscribe-emails"

// Config holds subscription endpoint configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	URL     string        `env:"SUBSCRIPTION_LIST_URL" envDefault:"https://seet25.sw-conf.com/subscribe-emails"`
	Timeout time.Duration `env:"SUBSCRIPTION_TIMEOUT" envDefault:"10s"`
}
