package assistant

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"artassist/internal/config"
	"artassist/internal/matcher"
	"artassist/internal/models"
	"artassist/internal/service/ai"
)

// Credential is the user-supplied key enabling the generative path.
type Credential struct {
	Provider string
	Model    string
	APIKey   string
}

// Configured reports whether the credential carries a key.
func (c *Credential) Configured() bool {
	return c != nil && strings.TrimSpace(c.APIKey) != ""
}

// Result is what Suggest hands back to the conversation.
type Result struct {
	Ideas          []models.Idea
	Source         models.IdeaSource
	UsedCredential bool
}

// GeneratorFactory builds a generator for a credential.
type GeneratorFactory func(ctx context.Context, provider, model, apiKey string) (ai.Generator, error)

// Service suggests ideas, preferring the model when a credential is configured.
type Service struct {
	match        func(string) []models.Idea
	newGenerator GeneratorFactory
	now          func() time.Time

	mu         sync.Mutex
	generators map[string]ai.Generator
}

// NewService wires the bridge to the configured providers.
func NewService(cfg *config.Config) *Service {
	return NewServiceWithFactory(func(ctx context.Context, provider, model, apiKey string) (ai.Generator, error) {
		return ai.NewGenerator(ctx, cfg, provider, model, apiKey)
	})
}

// NewServiceWithFactory is NewService with a custom generator factory.
func NewServiceWithFactory(factory GeneratorFactory) *Service {
	return &Service{
		match:        matcher.Match,
		newGenerator: factory,
		now:          time.Now,
		generators:   make(map[string]ai.Generator),
	}
}

// Suggest never fails: any problem on the model path falls back to the keyword matcher.
func (s *Service) Suggest(ctx context.Context, prompt string, cred *Credential) Result {
	if !cred.Configured() {
		return Result{Ideas: s.match(prompt), Source: models.SourceCatalog}
	}
	ideas, err := s.generate(ctx, prompt, cred)
	if err != nil {
		log.Printf("generate ideas failed, using catalog: %v", err)
		return Result{Ideas: s.match(prompt), Source: models.SourceCatalog, UsedCredential: true}
	}
	return Result{Ideas: ideas, Source: models.SourceAI, UsedCredential: true}
}

func (s *Service) generate(ctx context.Context, prompt string, cred *Credential) ([]models.Idea, error) {
	gen, err := s.generatorFor(ctx, cred)
	if err != nil {
		return nil, err
	}
	raw, err := gen.Generate(ctx, BuildPrompt(prompt))
	if err != nil {
		return nil, err
	}
	decoded := DecodeIdeas(raw, s.now())
	if decoded.Status != DecodeOK {
		return nil, decoded.Err
	}
	return decoded.Ideas, nil
}

// generatorFor reuses a generator while provider, model and key are unchanged.
func (s *Service) generatorFor(ctx context.Context, cred *Credential) (ai.Generator, error) {
	key := cacheKey(cred)
	s.mu.Lock()
	gen, ok := s.generators[key]
	s.mu.Unlock()
	if ok {
		return gen, nil
	}
	gen, err := s.newGenerator(ctx, cred.Provider, cred.Model, cred.APIKey)
	if err != nil {
		return nil, fmt.Errorf("init generator: %w", err)
	}
	s.mu.Lock()
	s.generators[key] = gen
	s.mu.Unlock()
	return gen, nil
}

// Forget drops the cached generator for a credential.
func (s *Service) Forget(cred *Credential) {
	if cred == nil {
		return
	}
	s.mu.Lock()
	delete(s.generators, cacheKey(cred))
	s.mu.Unlock()
}

func cacheKey(cred *Credential) string {
	sum := sha256.Sum256([]byte(cred.APIKey))
	return strings.ToLower(cred.Provider) + "|" + cred.Model + "|" + hex.EncodeToString(sum[:])
}
