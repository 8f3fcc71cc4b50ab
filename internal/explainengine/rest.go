package explainengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shine-lab/orchestration-core/internal/eventlog"
	"github.com/shine-lab/orchestration-core/internal/logging"
)

// restCallTimeout bounds every outbound call to the engine (§5: "External
// explanation-engine calls (REST): bounded timeout, default 5 s").
const restCallTimeout = 5 * time.Second

func init() {
	Register("rest", func(deps Deps) (Engine, error) {
		if deps.Config == nil || deps.Config.EngineURL == "" {
			return nil, fmt.Errorf("explainengine: rest mode requires explanation.engineUrl")
		}
		return &restEngine{
			baseURL: deps.Config.EngineURL,
			client:  &http.Client{Timeout: restCallTimeout},
		}, nil
	})
}

// restEngine calls an external HTTP explanation engine: POST {url}/log on
// every log entry, POST {url}/explain for an explicit request.
type restEngine struct {
	baseURL string
	client  *http.Client
}

func (e *restEngine) Kind() string { return "rest" }

type restExplainResponse struct {
	Success     bool   `json:"success"`
	Explanation string `json:"explanation"`
}

func (e *restEngine) NotifyLog(ctx context.Context, meta eventlog.Metadata) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, restCallTimeout)
	defer cancel()

	body, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("explainengine: marshal log notify: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/log", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("explainengine: build log notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		logging.ExplainEngine().Warn().Err(err).Msg("engine /log call failed, continuing without explanation")
		return nil, nil
	}
	defer resp.Body.Close()

	var parsed restExplainResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		logging.ExplainEngine().Warn().Err(err).Msg("engine /log response unreadable")
		return nil, nil
	}
	if !parsed.Success {
		return nil, nil
	}
	return &Result{Success: true, Explanation: parsed.Explanation}, nil
}

func (e *restEngine) FromRuleKey(string) (Result, bool) {
	return Result{}, false
}

func (e *restEngine) RequestExplanation(ctx context.Context, sessionID string, userMessage *string) (Result, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, restCallTimeout)
	defer cancel()

	payload := map[string]interface{}{"user_id": sessionID}
	if userMessage != nil {
		payload["user_message"] = *userMessage
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, false, fmt.Errorf("explainengine: marshal explain request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/explain", bytes.NewReader(body))
	if err != nil {
		return Result{}, false, fmt.Errorf("explainengine: build explain request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		logging.ExplainEngine().Warn().Err(err).Msg("engine /explain call failed")
		return Result{Success: false, Explanation: "no explanation available"}, true, nil
	}
	defer resp.Body.Close()

	var parsed restExplainResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		logging.ExplainEngine().Warn().Err(err).Msg("engine /explain response unreadable")
		return Result{Success: false, Explanation: "no explanation available"}, true, nil
	}
	if !parsed.Success {
		return Result{Success: false, Explanation: "no explanation available"}, true, nil
	}
	return Result{Success: true, Explanation: parsed.Explanation}, true, nil
}
