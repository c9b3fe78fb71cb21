package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"

	"github.com/qapilothq/Valetudo/internal/config"
	"github.com/qapilothq/Valetudo/internal/hierarchy"
	"github.com/qapilothq/Valetudo/internal/logger"
)

const popupXML = `<hierarchy width="200" height="400">
  <android.widget.FrameLayout bounds="[10,20][110,220]">
    <android.widget.TextView text="Special offer!" bounds="[20,40][100,60]"/>
    <android.widget.Button text="Accept" clickable="true" bounds="[20,80][100,120]"/>
    <android.widget.Button text="Not now" clickable="true" bounds="[20,140][100,180]"/>
  </android.widget.FrameLayout>
</hierarchy>`

const noPopupXML = `<hierarchy width="200" height="400">
  <android.widget.LinearLayout bounds="[0,0][200,400]"/>
</hierarchy>`

type stubRecommender struct {
	summaryCalls   int
	annotatedCalls int
	imageCalls     int
	lastSummary    string
	rec            *hierarchy.Recommendation
	imageResponse  map[string]any
}

func (s *stubRecommender) RecommendFromSummary(ctx context.Context, desc, summary string) (*hierarchy.Recommendation, error) {
	s.summaryCalls++
	s.lastSummary = summary
	return s.rec, nil
}

func (s *stubRecommender) RecommendFromImage(ctx context.Context, desc, encodedImage string) (map[string]any, error) {
	s.imageCalls++
	return s.imageResponse, nil
}

func (s *stubRecommender) RecommendFromAnnotatedImage(ctx context.Context, desc, encodedImage string) (*hierarchy.Recommendation, error) {
	s.annotatedCalls++
	return s.rec, nil
}

func newTestServer(stub *stubRecommender) *Server {
	gin.SetMode(gin.TestMode)
	cfg := &config.Cfg{}
	cfg.Fetch.TimeoutSeconds = 5
	return New(cfg, logger.Nop(), nil, stub)
}

func invoke(t *testing.T, s *Server, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/invoke", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(&stubRecommender{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestInvokeXMLOnly(t *testing.T) {
	detected := hierarchy.BoolLike(true)
	stub := &stubRecommender{rec: &hierarchy.Recommendation{
		PopupDetection:  &detected,
		SuggestedAction: "tap Not now",
		PrimaryMethod:   hierarchy.Method{ID: "2", SelectionReason: "dismisses"},
		AlternateMethods: []hierarchy.Method{
			{ID: "99", DismissalReason: "unknown"},
		},
	}}
	s := newTestServer(stub)

	w := invoke(t, s, map[string]any{"xml": popupXML, "testcase_desc": "close the pop up"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if stub.summaryCalls != 1 {
		t.Fatalf("expected one summary call, got %d", stub.summaryCalls)
	}
	if !strings.Contains(stub.lastSummary, `"is_popup":true`) {
		t.Errorf("summary not forwarded: %s", stub.lastSummary)
	}

	var resp hierarchy.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("status = %q", resp.Status)
	}
	metadata, ok := resp.AgentResponse.PrimaryMethod.ElementMetadata.(map[string]any)
	if !ok || metadata["text"] != "Not now" {
		t.Errorf("primary metadata = %+v", resp.AgentResponse.PrimaryMethod.ElementMetadata)
	}
	if len(resp.AgentResponse.AlternativeMethods) != 1 || resp.AgentResponse.AlternativeMethods[0].ID != "99" {
		t.Errorf("alternates = %+v", resp.AgentResponse.AlternativeMethods)
	}
}

func TestInvokeXMLOnlyNoPopupSkipsLLM(t *testing.T) {
	stub := &stubRecommender{}
	s := newTestServer(stub)

	w := invoke(t, s, map[string]any{"xml": noPopupXML})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if stub.summaryCalls != 0 {
		t.Error("geometry-negative documents must not consult the collaborator")
	}

	var resp hierarchy.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.AgentResponse.PopupDetection {
		t.Error("expected popup_detection false")
	}
}

func TestInvokeImageOnly(t *testing.T) {
	stub := &stubRecommender{imageResponse: map[string]any{
		"popup_detection": "false",
	}}
	s := newTestServer(stub)

	w := invoke(t, s, map[string]any{"image": testImageBase64(t)})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if stub.imageCalls != 1 {
		t.Fatalf("expected one image call, got %d", stub.imageCalls)
	}
	if !strings.Contains(w.Body.String(), `"agent_response"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestInvokeCombined(t *testing.T) {
	stub := &stubRecommender{rec: &hierarchy.Recommendation{
		SuggestedAction: "tap element 12",
		PrimaryMethod:   hierarchy.Method{ID: "12", SelectionReason: "labeled close"},
	}}
	s := newTestServer(stub)

	payload := map[string]any{
		"image": testImageBase64(t),
		"actionable_elements": []map[string]any{
			{
				"elementId": "12",
				"text":      "Close",
				"attributes": []map[string]string{
					{"name": "bounds", "value": "[10,10][60,60]"},
				},
			},
		},
	}
	w := invoke(t, s, payload)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if stub.annotatedCalls != 1 {
		t.Fatalf("expected the annotated-image flow, got %+v", stub)
	}

	var resp hierarchy.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	metadata, ok := resp.AgentResponse.PrimaryMethod.ElementMetadata.(map[string]any)
	if !ok || metadata["description"] != "Close" {
		t.Errorf("primary metadata = %+v", resp.AgentResponse.PrimaryMethod.ElementMetadata)
	}
}

func TestInvokeBadBase64(t *testing.T) {
	s := newTestServer(&stubRecommender{})
	w := invoke(t, s, map[string]any{"image": "!!definitely not base64!!"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid base64 image data") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestInvokeNoInputs(t *testing.T) {
	s := newTestServer(&stubRecommender{})
	w := invoke(t, s, map[string]any{"testcase_desc": "close it"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestInvokeMalformedJSON(t *testing.T) {
	s := newTestServer(&stubRecommender{})
	req := httptest.NewRequest(http.MethodPost, "/invoke", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid JSON format.") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestHistoryDisabledWithoutRepo(t *testing.T) {
	s := newTestServer(&stubRecommender{})
	req := httptest.NewRequest(http.MethodGet, "/api/detections", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", w.Code)
	}
}

func testImageBase64(t *testing.T) string {
	t.Helper()
	img := imaging.New(100, 100, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}
