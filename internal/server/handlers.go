package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/medtriage/internal/history"
	"github.com/Skufu/medtriage/internal/model"
	"github.com/Skufu/medtriage/internal/triage"
)

type diseaseInfo struct {
	Name         triage.Disease  `json:"name"`
	Strategy     triage.Strategy `json:"strategy"`
	ModelCapable bool            `json:"model_capable"`
	Fields       []string        `json:"fields"`
}

type predictResponse struct {
	Status         string          `json:"status"`
	Disease        triage.Disease  `json:"disease"`
	Verdict        triage.Verdict  `json:"verdict"`
	Strategy       triage.Strategy `json:"strategy"`
	Probability    *float64        `json:"probability,omitempty"`
	RuleClamped    bool            `json:"rule_clamped,omitempty"`
	Recommendation string          `json:"recommendation"`
	Clinical       []string        `json:"clinical"`
	Herbal         []string        `json:"herbal"`
}

func (h *handler) listDiseases(c *gin.Context) {
	routes := h.Engine.Routes()
	out := make([]diseaseInfo, 0, len(routes))
	for _, d := range triage.Diseases() {
		strategy, ok := routes[d]
		if !ok {
			continue
		}
		out = append(out, diseaseInfo{
			Name:         d,
			Strategy:     strategy,
			ModelCapable: triage.ModelCapable(d),
			Fields:       triage.FeatureSchema(d),
		})
	}
	c.JSON(http.StatusOK, gin.H{"diseases": out})
}

func (h *handler) listModels(c *gin.Context) {
	statuses := h.Models.Statuses()
	if statuses == nil {
		statuses = []model.Status{}
	}
	c.JSON(http.StatusOK, gin.H{"models": statuses})
}

func (h *handler) getModel(c *gin.Context) {
	d, err := triage.ParseDisease(c.Param("disease"))
	if err != nil {
		abortError(c, http.StatusNotFound, triage.ErrUnknownDisease.Error())
		return
	}
	status, ok := h.Models.Status(string(d))
	if !ok {
		abortError(c, http.StatusNotFound, "no model registered for "+string(d))
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *handler) predict(c *gin.Context) {
	in, err := bindInputs(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortError(c, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		abortError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	res, err := h.Engine.Classify(c.Param("disease"), in)
	switch {
	case errors.Is(err, triage.ErrUnknownDisease):
		abortError(c, http.StatusNotFound, triage.ErrUnknownDisease.Error())
		return
	case errors.Is(err, triage.ErrModelUnavailable):
		h.Logger.Warn("model unavailable", "disease", c.Param("disease"), "error", err)
		abortError(c, http.StatusServiceUnavailable, triage.ErrModelUnavailable.Error())
		return
	case err != nil:
		h.Logger.Error("classification failed", "disease", c.Param("disease"), "error", err)
		abortError(c, http.StatusInternalServerError, "internal error")
		return
	}

	if user := strings.TrimSpace(c.GetHeader(userHeader)); user != "" {
		h.Recorder.Record(history.NewRecord(user, string(res.Disease), string(res.Verdict), in))
	}

	c.JSON(http.StatusOK, predictResponse{
		Status:         "success",
		Disease:        res.Disease,
		Verdict:        res.Verdict,
		Strategy:       res.Strategy,
		Probability:    res.Probability,
		RuleClamped:    res.RuleClamped,
		Recommendation: res.Suggestion.Recommendation,
		Clinical:       res.Suggestion.Clinical,
		Herbal:         res.Suggestion.Herbal,
	})
}

func (h *handler) listHistory(c *gin.Context) {
	if h.History == nil {
		abortError(c, http.StatusServiceUnavailable, "history is disabled")
		return
	}
	user := strings.TrimSpace(c.GetHeader(userHeader))
	if user == "" {
		abortError(c, http.StatusUnauthorized, userHeader+" header is required")
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			abortError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.History.ListByUser(c.Request.Context(), user, limit)
	if err != nil {
		h.Logger.Error("list history failed", "user_id", user, "error", err)
		abortError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// bindInputs accepts a flat JSON object or an urlencoded/multipart form. For
// repeated form keys the first value wins.
func bindInputs(c *gin.Context) (triage.Inputs, error) {
	if c.ContentType() == gin.MIMEJSON {
		dec := json.NewDecoder(c.Request.Body)
		dec.UseNumber()
		var values map[string]any
		if err := dec.Decode(&values); err != nil {
			return nil, err
		}
		return triage.InputsFromValues(values), nil
	}

	if err := c.Request.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	in := make(triage.Inputs, len(c.Request.PostForm))
	for k, vs := range c.Request.PostForm {
		if len(vs) > 0 {
			in[k] = vs[0]
		}
	}
	return in, nil
}

func abortError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"status": "error", "error": msg})
}
