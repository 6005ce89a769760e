// Package scripted provides an offline invoker that replays canned replies.
// It implements the domain.Invoker interface without making external API calls,
// providing deterministic responses for development and end-to-end tests.
package scripted

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/davidbz/pressroom/internal/domain"
	"github.com/davidbz/pressroom/internal/observability"
)

const providerName = "scripted"

//go:embed fixtures.yaml
var defaultFixtures []byte

// Config selects the fixture file. The embedded fixtures are used when empty.
type Config struct {
	FixturesPath string `env:"SCRIPTED_FIXTURES_PATH"`
}

// Fixture is a list of replies served when every Match string occurs in the prompt pair.
type Fixture struct {
	Name    string   `yaml:"name"`
	Match   []string `yaml:"match"`
	Replies []string `yaml:"replies"`
	// Status, when set, makes the fixture fail with an upstream error of that code.
	Status int `yaml:"status"`
}

type fixtureFile struct {
	Fixtures []Fixture `yaml:"fixtures"`
}

// Provider implements domain.Invoker by replaying fixtures.
type Provider struct {
	name     string
	fixtures []Fixture

	mu     sync.Mutex
	cursor map[int]int
	calls  int
}

// NewProvider creates a scripted provider from config.
func NewProvider(config Config) (*Provider, error) {
	data := defaultFixtures
	if config.FixturesPath != "" {
		raw, err := os.ReadFile(config.FixturesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read fixtures: %w", err)
		}
		data = raw
	}

	fixtures, err := ParseFixtures(data)
	if err != nil {
		return nil, err
	}
	return NewProviderWithFixtures(fixtures), nil
}

// NewProviderWithFixtures creates a scripted provider from in-memory fixtures.
func NewProviderWithFixtures(fixtures []Fixture) *Provider {
	return &Provider{
		name:     providerName,
		fixtures: fixtures,
		cursor:   make(map[int]int, len(fixtures)),
	}
}

// ParseFixtures decodes a fixture document.
func ParseFixtures(data []byte) ([]Fixture, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	for i, f := range file.Fixtures {
		if len(f.Match) == 0 {
			return nil, fmt.Errorf("fixture %d (%s): match cannot be empty", i, f.Name)
		}
		if len(f.Replies) == 0 && f.Status == 0 {
			return nil, fmt.Errorf("fixture %d (%s): replies cannot be empty", i, f.Name)
		}
	}
	return file.Fixtures, nil
}

// Invoke returns the next reply of the first fixture matching the prompt pair.
func (p *Provider) Invoke(ctx context.Context, req *domain.InvocationRequest) (*domain.RawCompletion, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, &domain.InvocationError{Provider: p.name, Err: err}
	}

	logger := observability.FromContext(observability.WithProvider(ctx, p.name))

	start := time.Now()
	idx, fixture, ok := p.match(req.Prompt)
	if !ok {
		logger.Warn("no fixture matches prompt")
		return nil, &domain.InvocationError{Provider: p.name, Err: errors.New("no fixture matches prompt")}
	}

	if fixture.Status != 0 {
		p.mu.Lock()
		p.calls++
		p.mu.Unlock()
		return nil, &domain.InvocationError{
			Provider:   p.name,
			StatusCode: fixture.Status,
			Err:        fmt.Errorf("fixture %s returned status %d", fixture.Name, fixture.Status),
		}
	}

	text := p.next(idx, fixture)
	if strings.TrimSpace(text) == "" {
		return nil, &domain.InvocationError{Provider: p.name, Err: errors.New("empty completion")}
	}

	completion := &domain.RawCompletion{
		Text:             text,
		PromptTokens:     countTokens(req.Prompt.System) + countTokens(req.Prompt.User),
		CompletionTokens: countTokens(text),
		Latency:          time.Since(start),
	}

	logger.Debug("scripted reply served",
		observability.String("fixture", fixture.Name),
		observability.Int("prompt_tokens", completion.PromptTokens),
		observability.Int("completion_tokens", completion.CompletionTokens),
	)

	return completion, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Calls returns how many replies have been served.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *Provider) match(prompt domain.PromptPair) (int, Fixture, bool) {
	for i, f := range p.fixtures {
		if matchesAll(f.Match, prompt) {
			return i, f, true
		}
	}
	return 0, Fixture{}, false
}

func (p *Provider) next(idx int, fixture Fixture) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	pos := p.cursor[idx]
	p.cursor[idx] = pos + 1
	p.calls++
	return fixture.Replies[pos%len(fixture.Replies)]
}

func matchesAll(needles []string, prompt domain.PromptPair) bool {
	for _, needle := range needles {
		if !strings.Contains(prompt.System, needle) && !strings.Contains(prompt.User, needle) {
			return false
		}
	}
	return true
}

// countTokens performs simple word-based token counting.
func countTokens(content string) int {
	if content == "" {
		return 0
	}
	return len(strings.Fields(content))
}
