package explainengine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shine-lab/orchestration-core/internal/config"
)

func TestNoneEngine_RequestExplanation(t *testing.T) {
	e := noneEngine{}
	result, delivered, err := e.RequestExplanation(context.Background(), "s1", nil)
	require.NoError(t, err)
	assert.True(t, delivered)
	assert.False(t, result.Success)
}

func TestIntegratedEngine_FromRuleKey(t *testing.T) {
	e := &integratedEngine{
		cannedText: map[string]string{"oven_on": "<script>alert(1)</script>The oven was turned on."},
	}
	result, ok := e.FromRuleKey("oven_on")
	require.True(t, ok)
	assert.True(t, result.Success)
	assert.NotContains(t, result.Explanation, "<script>")
	assert.Contains(t, result.Explanation, "The oven was turned on.")

	_, ok = e.FromRuleKey("missing_key")
	assert.False(t, ok)
}

func TestIntegratedEngine_IsAutomatic(t *testing.T) {
	e := &integratedEngine{trigger: config.TriggerAutomatic}
	assert.True(t, e.IsAutomatic())

	e2 := &integratedEngine{trigger: config.TriggerOnDemand}
	assert.False(t, e2.IsAutomatic())
}

func TestCallbackAuthenticator_GenerateAndVerify(t *testing.T) {
	auth := NewCallbackAuthenticator()
	plain, hash, err := auth.GenerateAPIKey()
	require.NoError(t, err)
	assert.True(t, auth.VerifyAPIKey(hash, plain))
	assert.False(t, auth.VerifyAPIKey(hash, "wrong-key"))
}

func TestResolveName(t *testing.T) {
	assert.Equal(t, "none", resolveName(nil))
	assert.Equal(t, "integrated", resolveName(&config.Explanation{Mode: config.EngineIntegrated}))
	assert.Equal(t, "rest", resolveName(&config.Explanation{Mode: config.EngineExternal, Transport: config.TransportREST}))
}

func TestWSEngine_HandleInbound_RoutesDelivery(t *testing.T) {
	e := &wsEngine{}
	var gotSession string
	var gotResult Result
	e.SetDeliveryFunc(func(sessionID string, result Result) {
		gotSession, gotResult = sessionID, result
	})

	err := e.HandleInbound([]byte(`{"type":"explanation_receival","user_id":"s1","explanation":"because the goal was met"}`))
	require.NoError(t, err)
	assert.Equal(t, "s1", gotSession)
	assert.True(t, gotResult.Success)
	assert.Equal(t, "because the goal was met", gotResult.Explanation)
}

func TestWSEngine_HandleInbound_IgnoresOtherFrameTypes(t *testing.T) {
	e := &wsEngine{}
	called := false
	e.SetDeliveryFunc(func(string, Result) { called = true })

	err := e.HandleInbound([]byte(`{"type":"ping"}`))
	require.NoError(t, err)
	assert.False(t, called)
}
