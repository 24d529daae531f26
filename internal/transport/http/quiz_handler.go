package http

import (
	"net/http"

	"web3-quiz-service/internal/app"
	"web3-quiz-service/internal/domain"
)

// QuizHandler serves the catalogue and new-quiz screens.
type QuizHandler struct{}

func NewQuizHandler() *QuizHandler {
	return &QuizHandler{}
}

type categoryView struct {
	domain.Category
	NewQuizLink string `json:"newQuizLink"`
}

type quizOptions struct {
	Category       string   `json:"category"`
	Difficulties   []string `json:"difficulties"`
	QuestionCounts []int    `json:"questionCounts"`
	TimeLimits     []int    `json:"timeLimits"`
	Defaults       struct {
		Difficulty string `json:"difficulty"`
		Count      int    `json:"count"`
		TimeLimit  int    `json:"time"`
	} `json:"defaults"`
}

type newQuizResponse struct {
	Params   domain.SessionParams `json:"params"`
	PlayLink string               `json:"playLink"`
}

func (h *QuizHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats := app.Categories()
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryView{Category: c, NewQuizLink: app.NewQuizLink(c.ID)})
	}
	writeJSON(w, r, http.StatusOK, out)
}

// Options returns the new-quiz menus with the category from the query preselected.
func (h *QuizHandler) Options(w http.ResponseWriter, r *http.Request) {
	opts := quizOptions{
		Category:       r.URL.Query().Get("category"),
		Difficulties:   app.Difficulties,
		QuestionCounts: app.QuestionCounts,
		TimeLimits:     app.TimeLimits,
	}
	opts.Defaults.Difficulty = app.DefaultDifficulty
	opts.Defaults.Count = app.DefaultCount
	opts.Defaults.TimeLimit = app.DefaultTimeLimit
	writeJSON(w, r, http.StatusOK, opts)
}

// NewQuiz resolves the chosen settings into a play link.
func (h *QuizHandler) NewQuiz(w http.ResponseWriter, r *http.Request) {
	var raw app.RawParams
	if err := decodeJSON(w, r, &raw); err != nil {
		writeFail(w, r, http.StatusBadRequest, ErrInvalidPayload, "invalid request body", nil)
		return
	}
	params, err := app.ResolveParams(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newQuizResponse{Params: params, PlayLink: app.PlayLink(params)})
}
