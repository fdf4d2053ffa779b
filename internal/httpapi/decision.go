package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/haccpd/internal/decisiontree"
	"github.com/fyrsmithlabs/haccpd/internal/resolver"
	"github.com/fyrsmithlabs/haccpd/internal/retriever"
	"github.com/fyrsmithlabs/haccpd/internal/suggest"
)

// SimilarStepsRequest is the body for POST /api/v1/steps/similar.
type SimilarStepsRequest struct {
	Produto string `json:"produto"`
	Etapa   string `json:"etapa"`
	TopN    int    `json:"top_n,omitempty"`
}

// SimilarStepsResponse lists the closest known step names for a product.
type SimilarStepsResponse struct {
	Produto string                `json:"produto"`
	Etapas  []retriever.StepMatch `json:"etapas_similares"`
}

func (s *Server) handleSimilarSteps(c echo.Context) error {
	var req SimilarStepsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Produto == "" || req.Etapa == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "produto and etapa are required")
	}

	matches, err := s.library.SimilarSteps(c.Request().Context(), req.Produto, req.Etapa, req.TopN)
	if err != nil {
		if errors.Is(err, retriever.ErrIndexNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "no index for product "+req.Produto)
		}
		s.logger.Error("similar steps failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	return c.JSON(http.StatusOK, SimilarStepsResponse{Produto: req.Produto, Etapas: matches})
}

// ResolveHazardsRequest is the body for POST /api/v1/hazards/resolve.
type ResolveHazardsRequest struct {
	Produto string `json:"produto"`
	Etapa   string `json:"etapa"`
}

func (s *Server) handleResolveHazards(c echo.Context) error {
	var req ResolveHazardsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Produto == "" || req.Etapa == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "produto and etapa are required")
	}

	set, err := s.resolver.ResolveHazards(c.Request().Context(), req.Produto, req.Etapa)
	if err != nil {
		if errors.Is(err, resolver.ErrNoHazards) {
			return echo.NewHTTPError(http.StatusNotFound, "no hazards found for step "+req.Etapa)
		}
		s.logger.Error("hazard resolution failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "resolution failed")
	}
	return c.JSON(http.StatusOK, set)
}

// EvaluateRequest carries the questionnaire answers collected so far.
// Every field is "Sim", "Não" or absent.
type EvaluateRequest struct {
	Questao1  string `json:"questao_1"`
	Questao1a string `json:"questao_1a"`
	Questao2  string `json:"questao_2"`
	Questao3  string `json:"questao_3"`
	Questao4  string `json:"questao_4"`
}

// NextQuestion names the question the client must ask next.
type NextQuestion struct {
	ID    string `json:"questao_id"`
	Texto string `json:"texto"`
}

// EvaluateResponse is terminal (resultado set) or pending (proxima set).
type EvaluateResponse struct {
	Resultado string        `json:"resultado,omitempty"`
	Proxima   *NextQuestion `json:"proxima,omitempty"`
}

func (s *Server) handleEvaluate(c echo.Context) error {
	var req EvaluateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	for _, v := range []string{req.Questao1, req.Questao1a, req.Questao2, req.Questao3, req.Questao4} {
		if !decisiontree.ValidAnswer(v) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				"answers must be \"Sim\", \"Não\" or omitted")
		}
	}

	res := decisiontree.Evaluate(decisiontree.Answers{
		Q1:  req.Questao1,
		Q1a: req.Questao1a,
		Q2:  req.Questao2,
		Q3:  req.Questao3,
		Q4:  req.Questao4,
	})
	if res.Terminal() {
		return c.JSON(http.StatusOK, EvaluateResponse{Resultado: string(res.Outcome)})
	}
	return c.JSON(http.StatusOK, EvaluateResponse{Proxima: &NextQuestion{
		ID:    string(res.Next),
		Texto: res.Next.Text(),
	}})
}

// SuggestPlanRequest is the body for POST /api/v1/monitoring-plan/suggest.
type SuggestPlanRequest struct {
	Produto       string `json:"produto"`
	Etapa         string `json:"etapa"`
	Tipo          string `json:"tipo"`
	Perigo        string `json:"perigo"`
	Medida        string `json:"medida"`
	Justificativa string `json:"justificativa"`
}

func (s *Server) handleSuggestPlan(c echo.Context) error {
	var req SuggestPlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Produto == "" || req.Etapa == "" || req.Perigo == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "produto, etapa and perigo are required")
	}

	plan, err := s.suggester.SuggestMonitoringPlan(c.Request().Context(), suggest.Query{
		Produto:       req.Produto,
		Etapa:         req.Etapa,
		Tipo:          req.Tipo,
		Perigo:        req.Perigo,
		Medida:        req.Medida,
		Justificativa: req.Justificativa,
	})
	if err != nil {
		if errors.Is(err, suggest.ErrNoSuggestion) {
			return echo.NewHTTPError(http.StatusNotFound, "no matching hazard in the indexed sheets")
		}
		s.logger.Error("plan suggestion failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "suggestion failed")
	}
	return c.JSON(http.StatusOK, plan)
}
