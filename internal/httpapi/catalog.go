package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/haccpd/internal/catalog"
	"github.com/fyrsmithlabs/haccpd/internal/decisiontree"
	"github.com/fyrsmithlabs/haccpd/internal/hazard"
)

// CreateProdutoRequest is the body for POST /api/v1/catalog/produtos.
type CreateProdutoRequest struct {
	Nome string `json:"nome"`
}

func (s *Server) handleCreateProduto(c echo.Context) error {
	var req CreateProdutoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Nome == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "nome is required")
	}

	p, err := s.catalog.CreateProduto(c.Request().Context(), req.Nome)
	if err != nil {
		s.logger.Error("failed to create product", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "create failed")
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleListProdutos(c echo.Context) error {
	list, err := s.catalog.ListProdutos(c.Request().Context())
	if err != nil {
		s.logger.Error("failed to list products", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "list failed")
	}
	return c.JSON(http.StatusOK, list)
}

// EnsureChainRequest is the body for POST /api/v1/catalog/chain.
type EnsureChainRequest struct {
	Produto       string `json:"produto"`
	Etapa         string `json:"etapa"`
	Tipo          string `json:"tipo"`
	Perigo        string `json:"perigo"`
	Justificativa string `json:"justificativa"`
	Medida        string `json:"medida"`
}

func (s *Server) handleEnsureChain(c echo.Context) error {
	var req EnsureChainRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Produto == "" || req.Etapa == "" || req.Perigo == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "produto, etapa and perigo are required")
	}

	res, err := s.catalog.EnsureChain(c.Request().Context(),
		req.Produto, req.Etapa, req.Tipo, req.Perigo, req.Justificativa, req.Medida)
	if err != nil {
		if errors.Is(err, catalog.ErrProdutoNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found: "+req.Produto)
		}
		s.logger.Error("failed to ensure chain", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "chain failed")
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleCatalogSaveFormH(c echo.Context) error {
	perigoID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid hazard id")
	}

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

	row, err := s.catalog.UpsertFormH(c.Request().Context(), uint(perigoID), hazard.FormH{
		Questao1:  req.Questao1,
		Questao1a: req.Questao1a,
		Questao2:  req.Questao2,
		Questao3:  req.Questao3,
		Questao4:  req.Questao4,
		Resultado: string(res.Outcome),
	})
	if err != nil {
		if errors.Is(err, catalog.ErrPerigoNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "hazard not found")
		}
		s.logger.Error("failed to save questionnaire", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "save failed")
	}
	return c.JSON(http.StatusOK, row)
}

func (s *Server) handleCatalogGetFormH(c echo.Context) error {
	perigoID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid hazard id")
	}

	row, err := s.catalog.GetFormH(c.Request().Context(), uint(perigoID))
	if err != nil {
		if errors.Is(err, catalog.ErrFormHNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "questionnaire not found")
		}
		s.logger.Error("failed to load questionnaire", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "load failed")
	}
	return c.JSON(http.StatusOK, row)
}
