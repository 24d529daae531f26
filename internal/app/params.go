package app

import (
	"net/url"
	"strconv"
	"strings"

	"web3-quiz-service/internal/domain"
	"web3-quiz-service/internal/validation"
)

const (
	DefaultDifficulty = "medium"
	DefaultCount      = 10
	DefaultTimeLimit  = 30
)

// Menus offered on the new-quiz screen. Values outside them are still accepted.
var (
	Difficulties   = []string{"easy", "medium", "hard"}
	QuestionCounts = []int{10, 15, 20}
	TimeLimits     = []int{30, 60, 90, 120}
)

// RawParams are quiz settings as picked by the user; nil numbers take defaults.
type RawParams struct {
	Category   string `json:"category" validate:"required"`
	Difficulty string `json:"difficulty"`
	Count      *int   `json:"count"`
	TimeLimit  *int   `json:"time"`
}

// ResolveParams validates the category and fills in defaults. Only the
// category is checked.
func ResolveParams(raw RawParams) (domain.SessionParams, error) {
	raw.Category = strings.TrimSpace(raw.Category)
	if err := validation.Struct(raw); err != nil {
		return domain.SessionParams{}, domain.ErrCategoryRequired
	}

	params := domain.SessionParams{
		Category:   raw.Category,
		Difficulty: raw.Difficulty,
		Count:      DefaultCount,
		TimeLimit:  DefaultTimeLimit,
	}
	if params.Difficulty == "" {
		params.Difficulty = DefaultDifficulty
	}
	if raw.Count != nil {
		params.Count = *raw.Count
	}
	if raw.TimeLimit != nil {
		params.TimeLimit = *raw.TimeLimit
	}
	return params, nil
}

// ParamsFromQuery reads play-link query parameters. Unparseable numbers are
// treated as absent.
func ParamsFromQuery(q url.Values) RawParams {
	return RawParams{
		Category:   q.Get("category"),
		Difficulty: q.Get("difficulty"),
		Count:      queryInt(q, "count"),
		TimeLimit:  queryInt(q, "time"),
	}
}

// PlayQuery renders params the way the play screen reads them back.
func PlayQuery(p domain.SessionParams) string {
	v := url.Values{}
	v.Set("category", p.Category)
	v.Set("difficulty", p.Difficulty)
	v.Set("count", strconv.Itoa(p.Count))
	v.Set("time", strconv.Itoa(p.TimeLimit))
	return v.Encode()
}

// PlayLink is the location of the play screen for p.
func PlayLink(p domain.SessionParams) string {
	return "/quiz/play?" + PlayQuery(p)
}

func queryInt(q url.Values, key string) *int {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
