package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/haccpd/internal/assessment"
	"github.com/fyrsmithlabs/haccpd/internal/decisiontree"
	"github.com/fyrsmithlabs/haccpd/internal/hazard"
)

// CreateAssessmentRequest is the body for POST /api/v1/assessments. The
// perigos list is typically the reviewed output of /hazards/resolve.
type CreateAssessmentRequest struct {
	Produto string         `json:"produto"`
	Etapa   string         `json:"etapa"`
	Perigos []hazard.FormG `json:"perigos"`
}

func (s *Server) handleCreateAssessment(c echo.Context) error {
	var req CreateAssessmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Produto == "" || req.Etapa == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "produto and etapa are required")
	}

	a, err := s.store.Create(c.Request().Context(), req.Produto, req.Etapa, req.Perigos)
	if err != nil {
		s.logger.Error("failed to create assessment", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "create failed")
	}
	return c.JSON(http.StatusCreated, a)
}

func (s *Server) handleListAssessments(c echo.Context) error {
	list, err := s.store.List(c.Request().Context(), c.QueryParam("produto"))
	if err != nil {
		s.logger.Error("failed to list assessments", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "list failed")
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleGetAssessment(c echo.Context) error {
	a, err := s.store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, assessment.ErrAssessmentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "assessment not found")
		}
		s.logger.Error("failed to load assessment", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "load failed")
	}
	return c.JSON(http.StatusOK, a)
}

func (s *Server) handleAddHazard(c echo.Context) error {
	var g hazard.FormG
	if err := c.Bind(&g); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	entry, err := s.store.AddHazard(c.Request().Context(), c.Param("id"), g)
	if err != nil {
		if errors.Is(err, assessment.ErrAssessmentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "assessment not found")
		}
		s.logger.Error("failed to add hazard", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "save failed")
	}
	return c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleUpdateHazard(c echo.Context) error {
	var g hazard.FormG
	if err := c.Bind(&g); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	err := s.store.UpdateHazard(c.Request().Context(), c.Param("id"), c.Param("entryID"), g)
	if err != nil {
		return s.assessmentError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SaveFormHRequest carries the questionnaire answers. Resultado is never
// accepted from the client; it is re-derived from the answers on save.
type SaveFormHRequest struct {
	Questao1  string `json:"questao_1"`
	Questao1a string `json:"questao_1a"`
	Questao2  string `json:"questao_2"`
	Questao3  string `json:"questao_3"`
	Questao4  string `json:"questao_4"`
}

// SaveFormHResponse returns the stored record; proxima is set when the
// questionnaire is still incomplete.
type SaveFormHResponse struct {
	FormularioH hazard.FormH  `json:"formulario_h"`
	Proxima     *NextQuestion `json:"proxima,omitempty"`
}

func (s *Server) handleSaveFormH(c echo.Context) error {
	var req SaveFormHRequest
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

	h := hazard.FormH{
		Questao1:  req.Questao1,
		Questao1a: req.Questao1a,
		Questao2:  req.Questao2,
		Questao3:  req.Questao3,
		Questao4:  req.Questao4,
		Resultado: string(res.Outcome),
	}
	if err := s.store.SaveFormH(c.Request().Context(), c.Param("id"), c.Param("entryID"), h); err != nil {
		return s.assessmentError(c, err)
	}

	resp := SaveFormHResponse{FormularioH: h}
	if !res.Terminal() {
		resp.Proxima = &NextQuestion{ID: string(res.Next), Texto: res.Next.Text()}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSaveFormI(c echo.Context) error {
	var plan hazard.FormI
	if err := c.Bind(&plan); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	err := s.store.SaveFormI(c.Request().Context(), c.Param("id"), c.Param("entryID"), plan)
	if err != nil {
		return s.assessmentError(c, err)
	}
	return c.JSON(http.StatusOK, plan)
}

// InitFormHRequest is the body for POST /api/v1/assessments/init-formulario-h.
type InitFormHRequest struct {
	Produto string `json:"produto"`
}

// InitFormHResponse reports how many empty questionnaire shells were seeded.
type InitFormHResponse struct {
	Inicializados int `json:"inicializados"`
}

func (s *Server) handleInitFormH(c echo.Context) error {
	var req InitFormHRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Produto == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "produto is required")
	}

	n, err := s.store.InitFormH(c.Request().Context(), req.Produto)
	if err != nil {
		s.logger.Error("failed to init questionnaires", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "init failed")
	}
	return c.JSON(http.StatusOK, InitFormHResponse{Inicializados: n})
}

func (s *Server) assessmentError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, assessment.ErrAssessmentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "assessment not found")
	case errors.Is(err, assessment.ErrHazardNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "hazard not found in assessment")
	default:
		s.logger.Error("assessment operation failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "operation failed")
	}
}
