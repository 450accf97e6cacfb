package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DylanChiang-Dev/caicaizi-class/internal/service"
	"github.com/DylanChiang-Dev/caicaizi-class/pkg/response"
)

// ImportHandler 课表导入 HTTP 处理器
type ImportHandler struct {
	importSvc service.ImportService
}

// NewImportHandler 创建 ImportHandler
func NewImportHandler(importSvc service.ImportService) *ImportHandler {
	return &ImportHandler{importSvc: importSvc}
}

// PreviewICS 解析上传的 ICS 课表并返回预览
// POST /api/v1/courses/import
//
// multipart/form-data, field="file"
func (h *ImportHandler) PreviewICS(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			// 交给 BodyLimit 中间件输出 413
			_ = c.Error(err)
			return
		}
		response.BadRequest(c, 23002, "请上传 ICS 文件")
		return
	}
	defer file.Close()

	preview, err := h.importSvc.PreviewICS(c.Request.Context(), file)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	response.OK(c, preview)
}

func (h *ImportHandler) handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrICSInvalid):
		response.BadRequest(c, 23001, "ICS 文件格式无效")
	default:
		response.InternalError(c)
	}
}
