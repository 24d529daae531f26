package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"web3-quiz-service/internal/app"
	"web3-quiz-service/internal/domain"
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dialPlay(t *testing.T, env *testEnv, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws/play?" + query
	header := http.Header{}
	header.Set("Authorization", "Bearer "+testToken)
	conn, _, err := websocket.DefaultDialer.Dial(u, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

// readState reads until a state snapshot satisfies match.
func readState(t *testing.T, conn *websocket.Conn, match func(app.Snapshot) bool) app.Snapshot {
	t.Helper()
	for {
		msg := readMessage(t, conn)
		if msg.Type != "state" {
			continue
		}
		var snap app.Snapshot
		if err := json.Unmarshal(msg.Payload, &snap); err != nil {
			t.Fatalf("decode state: %v", err)
		}
		if match(snap) {
			return snap
		}
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	var msg wsMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg
}

func testQuestions() []domain.Question {
	return []domain.Question{
		{ID: "1", Prompt: "What secures a blockchain?", Options: []string{"Hashing", "Paper"}, CorrectAnswer: "Hashing"},
		{ID: "2", Prompt: "What is a DAO?", Options: []string{"A bank", "An organization"}, CorrectAnswer: "An organization"},
	}
}

func answerCurrent(t *testing.T, conn *websocket.Conn, index int) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": "select", "payload": map[string]int{"index": index}}); err != nil {
		t.Fatalf("write select: %v", err)
	}
	if err := conn.WriteJSON(map[string]any{"type": "submit"}); err != nil {
		t.Fatalf("write submit: %v", err)
	}
}

func TestPlayFlowOverWebSocket(t *testing.T) {
	env := newTestEnv(t, testQuestions())
	conn := dialPlay(t, env, "category=DeFi&count=2&time=0&userWallet=0xabc")
	defer conn.Close()

	readState(t, conn, func(s app.Snapshot) bool { return s.Phase == app.PhaseInProgress })
	answerCurrent(t, conn, 0)
	readState(t, conn, func(s app.Snapshot) bool { return s.CurrentIndex == 1 && !s.Submitted })
	answerCurrent(t, conn, 1)

	var result app.ResultView
	for {
		msg := readMessage(t, conn)
		if msg.Type == "error" {
			t.Fatalf("unexpected error message %s", msg.Payload)
		}
		if msg.Type == "result" {
			if err := json.Unmarshal(msg.Payload, &result); err != nil {
				t.Fatalf("decode result: %v", err)
			}
			break
		}
	}

	if result.Percentage == nil || *result.Percentage != 100 || result.Message != app.MessageOutstanding {
		t.Fatalf("unexpected result %+v", result)
	}
	if env.gateway.count() != 1 {
		t.Fatalf("expected one submission, got %d", env.gateway.count())
	}
	sub := env.gateway.subs[0]
	if sub.Player.UserID != "U001" || sub.Player.UserWallet != "0xabc" {
		t.Fatalf("unexpected player %+v", sub.Player)
	}
	if *sub.Answers[0] != 0 || *sub.Answers[1] != 1 {
		t.Fatalf("unexpected answers %v", sub.Answers)
	}
}

func TestPlayRejectsSubmitWithoutSelection(t *testing.T) {
	env := newTestEnv(t, testQuestions())
	conn := dialPlay(t, env, "category=DeFi&time=0")
	defer conn.Close()

	readState(t, conn, func(s app.Snapshot) bool { return s.Phase == app.PhaseInProgress })
	if err := conn.WriteJSON(map[string]any{"type": "submit"}); err != nil {
		t.Fatalf("write submit: %v", err)
	}
	for {
		msg := readMessage(t, conn)
		if msg.Type != "error" {
			continue
		}
		var payload errorPayload
		_ = json.Unmarshal(msg.Payload, &payload)
		if payload.Message != domain.ErrNoSelection.Error() {
			t.Fatalf("unexpected error %q", payload.Message)
		}
		return
	}
}

func TestPlayEmptySessionReportsResult(t *testing.T) {
	env := newTestEnv(t, nil)
	conn := dialPlay(t, env, "category=DeFi")
	defer conn.Close()

	for {
		msg := readMessage(t, conn)
		if msg.Type != "result" {
			continue
		}
		var result app.ResultView
		_ = json.Unmarshal(msg.Payload, &result)
		if result.Message != app.MessageEmpty || result.Total != 0 {
			t.Fatalf("unexpected empty result %+v", result)
		}
		break
	}
	if env.gateway.count() != 0 {
		t.Fatalf("empty session must not submit")
	}
}

func TestPlayEndRemovesSession(t *testing.T) {
	env := newTestEnv(t, testQuestions())
	conn := dialPlay(t, env, "category=DeFi&time=30")
	defer conn.Close()

	readState(t, conn, func(s app.Snapshot) bool { return s.Phase == app.PhaseInProgress })
	if err := conn.WriteJSON(map[string]any{"type": "end"}); err != nil {
		t.Fatalf("write end: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for env.sessions.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("session still registered after end")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPlayRequiresCategory(t *testing.T) {
	env := newTestEnv(t, nil)
	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/ws/play?difficulty=easy", nil)
	resp, err := noRedirect().Do(authed(req))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body envelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest || body.Error == nil || body.Error.Message != domain.CategoryAlert {
		t.Fatalf("expected category alert, got %d %+v", resp.StatusCode, body.Error)
	}
}
