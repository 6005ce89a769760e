package openai

// Config contains settings for any OpenAI-compatible chat completions endpoint.
// All fields map to OpenAI SDK options:
//   - APIKey: Maps to option.WithAPIKey()
//   - BaseURL: Maps to option.WithBaseURL()
//   - Timeout: Maps to option.WithRequestTimeout() (in seconds)
//
// Model is sent with every request. SDK retries are always disabled.
type Config struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://dashscope-intl.aliyuncs.com/compatible-mode/v1"`
	Model   string `env:"OPENAI_MODEL"    envDefault:"qwen3-32b-instruct"`
	Timeout int    `env:"OPENAI_TIMEOUT"  envDefault:"60"`
}
