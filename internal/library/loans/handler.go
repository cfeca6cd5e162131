package loans

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/loans", h.IssueBook)
	r.PUT("/loans/:issue_id/return", h.ReturnBook)
	r.GET("/loans", h.ListLoans)
	r.GET("/loans/:issue_id", h.GetLoan)
}

func (h *Handler) IssueBook(c *gin.Context) {
	var req IssueBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeValidation, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.IssueBook(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Header("Location", "/loans/"+res.IssueID)
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) ReturnBook(c *gin.Context) {
	// ボディ省略（返却日=当日）も許容する
	var req ReturnBookRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody(CodeValidation, "invalid json"))
			return
		}
	}
	res, err := h.svc.ReturnBook(c.Request.Context(), c.Param("issue_id"), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListLoans(c *gin.Context) {
	openOnly := false
	if v := c.Query("open"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			openOnly = b
		}
	}
	res, err := h.svc.ListLoans(c.Request.Context(), openOnly)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetLoan(c *gin.Context) {
	res, err := h.svc.GetLoan(c.Request.Context(), c.Param("issue_id"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------- helpers ----------

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func errorFromErr(err error) errorDTO {
	var msg string
	var code Code = CodeInternal
	if api, ok := err.(*APIError); ok {
		code, msg = api.Code, api.Message
	} else {
		msg = err.Error()
	}
	return errorBody(code, msg)
}
