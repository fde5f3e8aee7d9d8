package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/Veraticus/qrpay/internal/model"
	"github.com/Veraticus/qrpay/internal/orchestrator"
)

type textScanRequest struct {
	UserID    string `json:"user_id"`
	QRPayload string `json:"qr_payload"`
	SessionID string `json:"session_id"`
}

// scanResponse flattens the result envelope next to the success flag.
type scanResponse struct {
	*orchestrator.Result
	Success bool `json:"success"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"time":       time.Now().UTC().Format(time.RFC3339),
		"completion": s.scanner.CompletionState().String(),
	})
}

func (s *Server) handleScanText(c *gin.Context) {
	var req textScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.NewUserError("Request body must be JSON with a qr_payload field.", err))
		return
	}
	if len(req.QRPayload) > maxPayloadSize {
		s.fail(c, common.NewUserError("QR payload is too large.", common.ErrInvalidPayload))
		return
	}

	res, err := s.scanner.HandleTextScan(c.Request.Context(), orchestrator.ScanRequest{
		UserID:    userOrDefault(req.UserID),
		SessionID: req.SessionID,
		Payload:   req.QRPayload,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, scanResponse{Success: true, Result: res})
}

func (s *Server) handleScanImage(c *gin.Context) {
	userID := userOrDefault(firstNonEmpty(c.Query("user_id"), c.PostForm("user_id")))
	sessionID := firstNonEmpty(c.Query("session_id"), c.PostForm("session_id"))

	fh, err := c.FormFile("file")
	if err != nil {
		s.fail(c, common.NewUserError("Please upload a QR image in the \"file\" field.", common.ErrEmptyInput))
		return
	}
	if fh.Size > maxUploadSize {
		s.fail(c, common.NewUserError("Uploaded image is too large.", common.ErrUnreadableImage))
		return
	}

	path, err := s.saveUpload(fh)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Warn("failed to remove upload", "path", path, "error", rmErr)
		}
	}()

	res, err := s.scanner.HandleImageScan(c.Request.Context(), orchestrator.ImageScanRequest{
		UserID:      userID,
		SessionID:   sessionID,
		ImagePath:   path,
		DisplayName: filepath.Base(fh.Filename),
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, scanResponse{Success: true, Result: res})
}

// saveUpload copies the multipart file to a private temp file.
func (s *Server) saveUpload(fh *multipart.FileHeader) (string, error) {
	in, err := fh.Open()
	if err != nil {
		return "", common.NewUserError("Could not read the uploaded file.", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.CreateTemp(s.uploadDir, "qr-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return "", err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		_ = os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}

func (s *Server) handleHistoryList(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusOK, gin.H{"items": []model.HistoryRecord{}})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	items, err := s.history.ListHistory(c.Request.Context(), userOrDefault(c.Query("user_id")), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	if items == nil {
		items = []model.HistoryRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) handleHistoryItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.fail(c, common.NewUserError("History id must be a number.", err))
		return
	}
	if s.history == nil {
		s.fail(c, common.ErrNotFound)
		return
	}

	raw, err := s.history.GetHistoryRaw(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": id, "result": raw})
}

func (s *Server) handleProfileGet(c *gin.Context) {
	profile := s.profiles.Ensure(c.Request.Context(), c.Param("user_id"))
	c.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
}

func (s *Server) handleProfileUpdate(c *gin.Context) {
	var update model.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		s.fail(c, common.NewUserError("Request body must be a JSON profile update.", err))
		return
	}
	if update.HomeCurrency != "" && len(strings.TrimSpace(update.HomeCurrency)) != 3 {
		s.fail(c, common.NewUserError("home_currency must be a 3-letter currency code.", common.ErrInvalidConfig))
		return
	}

	profile := s.profiles.Upsert(c.Request.Context(), c.Param("user_id"), update)
	c.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
}

func (s *Server) handleSessionGet(c *gin.Context) {
	sess, err := s.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sess})
}

func (s *Server) handleSessionClear(c *gin.Context) {
	if err := s.sessions.ClearHistory(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Session history cleared"})
}

// fail writes the error envelope. Only user-facing messages reach the client.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := common.UserMessage(err)

	switch {
	case common.IsUserError(err):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
		msg = "not found"
	default:
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}

	c.JSON(status, gin.H{"success": false, "error": msg})
}

func userOrDefault(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return DefaultUserID
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
