package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qapilothq/Valetudo/internal/annotate"
	"github.com/qapilothq/Valetudo/internal/database"
	"github.com/qapilothq/Valetudo/internal/elements"
	"github.com/qapilothq/Valetudo/internal/hierarchy"
)

const defaultTestcaseDesc = "close the pop up"

type invokeRequest struct {
	Image              string         `json:"image"`
	XML                string         `json:"xml"`
	TestcaseDesc       string         `json:"testcase_desc"`
	XMLURL             string         `json:"xml_url"`
	ImageURL           string         `json:"image_url"`
	ActionableElements []elements.Raw `json:"actionable_elements"`
}

// handleInvoke is the detection endpoint. It accepts a hierarchy document
// (inline or by URL), a screenshot (base64 or by URL), or both, and always
// answers with a structured response.
func (s *Server) handleInvoke(c *gin.Context) {
	start := time.Now()

	var req invokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid JSON format.",
			"details": err.Error(),
			"code":    http.StatusBadRequest,
		})
		return
	}
	if req.TestcaseDesc == "" {
		req.TestcaseDesc = defaultTestcaseDesc
	}

	ctx := c.Request.Context()

	encodedImage := ""
	if req.Image != "" {
		if _, err := base64.StdEncoding.DecodeString(req.Image); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "Invalid base64 image data",
				"code":    http.StatusBadRequest,
			})
			return
		}
		encodedImage = req.Image
	} else if req.ImageURL != "" {
		encoded, err := s.fetcher.ImageBase64(ctx, req.ImageURL)
		if err != nil {
			// Degrade to the no-image flows rather than failing the request.
			s.log.Warn("image fetch failed", zap.String("url", req.ImageURL), zap.Error(err))
		} else {
			encodedImage = encoded
		}
	}

	var processed *hierarchy.Result
	if req.XML != "" {
		processed = hierarchy.ExtractPopupDetails(req.XML)
	} else if req.XMLURL != "" {
		content, err := s.fetcher.Text(ctx, req.XMLURL)
		if err != nil {
			s.log.Warn("xml fetch failed", zap.String("url", req.XMLURL), zap.Error(err))
			processed = hierarchy.EmptyResult()
		} else {
			processed = hierarchy.ExtractPopupDetails(content)
		}
	}

	// Element metadata for annotation and id resolution: prefer the caller's
	// own actionable elements, fall back to what the hierarchy scan found.
	var elementIndex map[string]any
	var boxes []annotate.Box
	if len(req.ActionableElements) > 0 {
		supplied := elements.Process(req.ActionableElements)
		elementIndex = make(map[string]any, len(supplied))
		for id, element := range supplied {
			elementIndex[id] = element
			boxes = append(boxes, annotate.Box{ID: id, Bounds: element.Bounds()})
		}
	} else if processed != nil {
		elementIndex = processed.MetadataIndex()
		for id, element := range processed.Interactable {
			boxes = append(boxes, annotate.Box{ID: id, Bounds: element.Bounds})
		}
	}

	switch {
	case encodedImage != "" && len(elementIndex) > 0:
		s.invokeCombined(c, req, encodedImage, elementIndex, boxes, start)
	case encodedImage != "":
		s.invokeImageOnly(c, req, encodedImage, start)
	case processed != nil:
		s.invokeXMLOnly(c, req, processed, elementIndex, start)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Either XML (string/URL) or image (base64/URL) must be provided.",
			"code":    http.StatusBadRequest,
		})
	}
}

// invokeXMLOnly resolves a recommendation against the hierarchy scan.
// Geometry is authoritative: when the scan found no popup the collaborator
// is not consulted at all.
func (s *Server) invokeXMLOnly(c *gin.Context, req invokeRequest, processed *hierarchy.Result, elementIndex map[string]any, start time.Time) {
	if !processed.IsPopup {
		final := hierarchy.Resolve(false, nil, nil)
		s.respond(c, "xml", req.TestcaseDesc, false, final, start)
		return
	}

	rec, err := s.llm.RecommendFromSummary(c.Request.Context(), req.TestcaseDesc, processed.Summary())
	if err != nil {
		s.respondError(c, "xml", req.TestcaseDesc, err, start)
		return
	}

	final := hierarchy.Resolve(true, rec, elementIndex)
	s.respond(c, "xml", req.TestcaseDesc, true, final, start)
}

// invokeImageOnly forwards the model's visual-descriptor answer unresolved:
// without a hierarchy there are no element ids to map.
func (s *Server) invokeImageOnly(c *gin.Context, req invokeRequest, encodedImage string, start time.Time) {
	parsed, err := s.llm.RecommendFromImage(c.Request.Context(), req.TestcaseDesc, encodedImage)
	if err != nil {
		s.respondError(c, "image", req.TestcaseDesc, err, start)
		return
	}

	body := gin.H{
		"status":         "success",
		"message":        "success",
		"agent_response": parsed,
	}
	s.persist("image", req.TestcaseDesc, boolFromAny(parsed["popup_detection"]), "success", body, start)
	c.JSON(http.StatusOK, body)
}

// invokeCombined annotates the screenshot with element ids so the model's
// answer can be resolved back to full metadata.
func (s *Server) invokeCombined(c *gin.Context, req invokeRequest, encodedImage string, elementIndex map[string]any, boxes []annotate.Box, start time.Time) {
	annotated, err := s.annotator.Annotate(encodedImage, boxes)
	if err != nil {
		s.respondError(c, "combined", req.TestcaseDesc, err, start)
		return
	}

	rec, err := s.llm.RecommendFromAnnotatedImage(c.Request.Context(), req.TestcaseDesc, annotated)
	if err != nil {
		s.respondError(c, "combined", req.TestcaseDesc, err, start)
		return
	}

	final := hierarchy.Resolve(rec.Detected(), rec, elementIndex)
	s.respond(c, "combined", req.TestcaseDesc, rec.Detected(), final, start)
}

func (s *Server) respond(c *gin.Context, source, testcaseDesc string, isPopup bool, final *hierarchy.Response, start time.Time) {
	s.persist(source, testcaseDesc, isPopup, final.Status, final, start)
	c.JSON(http.StatusOK, final)
}

func (s *Server) respondError(c *gin.Context, source, testcaseDesc string, err error, start time.Time) {
	s.log.Error("invoke failed", zap.String("source", source), zap.Error(err))
	body := gin.H{
		"status":  "error",
		"message": "An unexpected error occurred.",
		"details": err.Error(),
		"code":    http.StatusInternalServerError,
	}
	s.persist(source, testcaseDesc, false, "error", body, start)
	c.JSON(http.StatusInternalServerError, body)
}

// persist records the call outcome; persistence is optional and failures
// are only logged.
func (s *Server) persist(source, testcaseDesc string, isPopup bool, status string, body any, start time.Time) {
	if s.repo == nil {
		return
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		s.log.Error("marshal detection record", zap.Error(err))
		return
	}

	record := &database.DetectionRecord{
		Source:       source,
		TestcaseDesc: testcaseDesc,
		IsPopup:      isPopup,
		Status:       status,
		ResponseBody: string(encoded),
		LatencyMs:    time.Since(start).Milliseconds(),
	}
	if err := s.repo.CreateDetection(record); err != nil {
		s.log.Error("create detection record", zap.Error(err))
	}
}

// boolFromAny interprets the loose popup_detection value of the image-only
// flow; absence means detected.
func boolFromAny(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return t
	case string:
		return t == "true" || t == "True"
	default:
		return true
	}
}
