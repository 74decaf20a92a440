package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"artassist/internal/models"
)

// jsonSpan is greedy: it spans from the first '{' to the last '}'.
var jsonSpan = regexp.MustCompile(`(?s)\{.*\}`)

var (
	ErrNoJSON       = errors.New("no json object in model response")
	ErrInvalidJSON  = errors.New("malformed json in model response")
	ErrInvalidIdeas = errors.New("model ideas failed validation")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type ideaPayload struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Difficulty  string   `json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
	Materials   []string `json:"materials" validate:"required,min=1,dive,required"`
	Inspiration string   `json:"inspiration" validate:"required"`
}

type ideasPayload struct {
	Ideas []ideaPayload `json:"ideas" validate:"required,min=1,dive"`
}

// DecodeStatus tags the outcome of decoding a model reply.
type DecodeStatus int

const (
	DecodeOK DecodeStatus = iota
	DecodeInvalid
)

// Decoded is the tagged result of DecodeIdeas: Ideas is set for DecodeOK, Err for DecodeInvalid.
type Decoded struct {
	Status DecodeStatus
	Ideas  []models.Idea
	Err    error
}

// ExtractJSON returns the first greedy {...} span of the text.
func ExtractJSON(text string) (string, bool) {
	span := jsonSpan.FindString(text)
	return span, span != ""
}

// DecodeIdeas parses and validates a model reply. Ideas get ids derived from now and their position.
func DecodeIdeas(raw string, now time.Time) Decoded {
	span, ok := ExtractJSON(raw)
	if !ok {
		return Decoded{Status: DecodeInvalid, Err: ErrNoJSON}
	}
	var payload ideasPayload
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		return Decoded{Status: DecodeInvalid, Err: fmt.Errorf("%w: %v", ErrInvalidJSON, err)}
	}
	if err := validate.Struct(payload); err != nil {
		return Decoded{Status: DecodeInvalid, Err: fmt.Errorf("%w: %v", ErrInvalidIdeas, err)}
	}

	items := payload.Ideas
	if len(items) > models.MaxIdeasPerMessage {
		items = items[:models.MaxIdeasPerMessage]
	}
	base := now.UnixMilli()
	ideas := make([]models.Idea, 0, len(items))
	for i, p := range items {
		ideas = append(ideas, models.Idea{
			ID:          strconv.FormatInt(base+int64(i), 10),
			Title:       p.Title,
			Description: p.Description,
			Category:    p.Category,
			Difficulty:  models.Difficulty(p.Difficulty),
			Materials:   append([]string(nil), p.Materials...),
			Inspiration: p.Inspiration,
		})
	}
	return Decoded{Status: DecodeOK, Ideas: ideas}
}
