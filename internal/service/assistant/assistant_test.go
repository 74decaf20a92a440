package assistant

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"artassist/internal/matcher"
	"artassist/internal/models"
	"artassist/internal/service/ai"
)

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func newTestService(gen ai.Generator, factoryErr error) (*Service, *int) {
	calls := 0
	svc := NewServiceWithFactory(func(ctx context.Context, provider, model, apiKey string) (ai.Generator, error) {
		calls++
		if factoryErr != nil {
			return nil, factoryErr
		}
		return gen, nil
	})
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc, &calls
}

const validReply = `Конечно! Вот идеи:
{"ideas": [
 {"title": "Ночной скетч", "description": "Рисуйте город ночью. Используйте только тушь.", "category": "Графика", "difficulty": "Easy", "materials": ["Тушь", "Перо", "Бумага"], "inspiration": "Гравюры Хокусая"},
 {"title": "Фотодневник", "description": "Снимайте один кадр в день.", "category": "Фотография", "difficulty": "Medium", "materials": ["Камера", "Штатив", "Блокнот"], "inspiration": "Вивиан Майер"},
 {"title": "Инсталляция", "description": "Соберите объект из мусора.", "category": "Скульптура", "difficulty": "Hard", "materials": ["Проволока", "Клей", "Пластик"], "inspiration": "Arte Povera"}
]}
Надеюсь, понравится.`

func TestSuggestWithoutCredentialMatchesCatalog(t *testing.T) {
	gen := &fakeGenerator{reply: validReply}
	svc, calls := newTestService(gen, nil)

	for _, cred := range []*Credential{nil, {Provider: "gemini", APIKey: "  "}} {
		got := svc.Suggest(context.Background(), "мне грустно", cred)
		if !reflect.DeepEqual(got.Ideas, matcher.Match("мне грустно")) {
			t.Fatalf("expected matcher output, got %+v", got.Ideas)
		}
		if got.Source != models.SourceCatalog || got.UsedCredential {
			t.Fatalf("unexpected result tags: %+v", got)
		}
	}
	if *calls != 0 || len(gen.prompts) != 0 {
		t.Fatalf("generator must not be used without credential")
	}
}

func TestSuggestUsesModelReply(t *testing.T) {
	gen := &fakeGenerator{reply: validReply}
	svc, _ := newTestService(gen, nil)

	got := svc.Suggest(context.Background(), "ночь", &Credential{Provider: "gemini", APIKey: "key"})
	if got.Source != models.SourceAI || !got.UsedCredential {
		t.Fatalf("expected ai result, got %+v", got)
	}
	if len(got.Ideas) != 3 {
		t.Fatalf("expected 3 ideas, got %d", len(got.Ideas))
	}
	if got.Ideas[0].ID != "1700000000000" || got.Ideas[2].ID != "1700000000002" {
		t.Fatalf("unexpected ids: %s %s", got.Ideas[0].ID, got.Ideas[2].ID)
	}
	if got.Ideas[1].Difficulty != models.DifficultyMedium || got.Ideas[1].Materials[2] != "Блокнот" {
		t.Fatalf("fields not carried through: %+v", got.Ideas[1])
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], `"ночь"`) {
		t.Fatalf("prompt not embedded once: %v", gen.prompts)
	}
}

func TestSuggestFallsBackOnFailures(t *testing.T) {
	cases := []struct {
		name       string
		gen        *fakeGenerator
		factoryErr error
	}{
		{"generator error", &fakeGenerator{err: errors.New("network down")}, nil},
		{"factory error", &fakeGenerator{}, errors.New("bad key")},
		{"no json", &fakeGenerator{reply: "Извините, я не могу помочь."}, nil},
		{"malformed json", &fakeGenerator{reply: `{"ideas": [ {"title": }`}, nil},
		{"wrong difficulty", &fakeGenerator{reply: `{"ideas":[{"title":"a","description":"b","category":"c","difficulty":"Extreme","materials":["x"],"inspiration":"d"}]}`}, nil},
		{"empty ideas", &fakeGenerator{reply: `{"ideas": []}`}, nil},
		{"missing field", &fakeGenerator{reply: `{"ideas":[{"title":"a","category":"c","difficulty":"Easy","materials":["x"],"inspiration":"d"}]}`}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestService(tc.gen, tc.factoryErr)
			got := svc.Suggest(context.Background(), "город", &Credential{APIKey: "key"})
			if !reflect.DeepEqual(got.Ideas, matcher.Match("город")) {
				t.Fatalf("expected fallback to matcher, got %+v", got.Ideas)
			}
			if got.Source != models.SourceCatalog || !got.UsedCredential {
				t.Fatalf("unexpected tags: %+v", got)
			}
		})
	}
}

func TestSuggestTruncatesToThreeIdeas(t *testing.T) {
	idea := `{"title":"t","description":"d","category":"c","difficulty":"Easy","materials":["m"],"inspiration":"i"}`
	reply := `{"ideas":[` + strings.Repeat(idea+",", 4) + idea + `]}`
	svc, _ := newTestService(&fakeGenerator{reply: reply}, nil)

	got := svc.Suggest(context.Background(), "что угодно", &Credential{APIKey: "key"})
	if got.Source != models.SourceAI || len(got.Ideas) != models.MaxIdeasPerMessage {
		t.Fatalf("expected 3 ai ideas, got %d (%s)", len(got.Ideas), got.Source)
	}
}

func TestGeneratorIsCachedPerCredential(t *testing.T) {
	gen := &fakeGenerator{reply: validReply}
	svc, calls := newTestService(gen, nil)
	cred := &Credential{Provider: "gemini", APIKey: "key"}

	svc.Suggest(context.Background(), "a", cred)
	svc.Suggest(context.Background(), "b", cred)
	if *calls != 1 {
		t.Fatalf("expected one factory call, got %d", *calls)
	}
	svc.Suggest(context.Background(), "c", &Credential{Provider: "gemini", APIKey: "other"})
	if *calls != 2 {
		t.Fatalf("expected new generator for another key, got %d calls", *calls)
	}
	svc.Forget(cred)
	svc.Suggest(context.Background(), "d", cred)
	if *calls != 3 {
		t.Fatalf("expected rebuild after Forget, got %d calls", *calls)
	}
}
