package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"interview_coach_backend/internal/config"
	"interview_coach_backend/internal/util"
	"interview_coach_backend/pkg/logger"

	"go.uber.org/zap"
)

// AudioService 语音答案上传：落临时文件、探测时长、推到对象存储
type AudioService struct {
	Storage *StorageService
	Cfg     *config.Config
}

func NewAudioService(storage *StorageService, cfg *config.Config) *AudioService {
	return &AudioService{Storage: storage, Cfg: cfg}
}

type AudioUploadResult struct {
	URL      string  `json:"url"`
	Duration float64 `json:"duration"` // 秒
	Size     int64   `json:"size"`
	Format   string  `json:"format"`
}

func allowedAudioExt(ext string) bool {
	for _, allowed := range util.AllowedAudioExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// UploadAnswerAudio 上传一段语音回答，返回可存入答案记录的 URL 和时长
func (s *AudioService) UploadAnswerAudio(ctx context.Context, userID uint, file *multipart.FileHeader) (*AudioUploadResult, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAudioExt(ext) {
		return nil, util.NewValidationError("file", ext, util.AllowedAudioExtensions...)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{util.MimeAudio, util.MimeOctetStream, "application/ogg", "video/webm"})
	if err != nil {
		return nil, util.NewValidationError("file", mimeType, "audio/*")
	}
	if _, err := src.Seek(0, 0); err != nil {
		return nil, err
	}

	// 先落本地临时文件，ffprobe 需要文件路径
	tempDir := filepath.Join(s.Cfg.Storage.LocalPath, "temp")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, err
	}
	tempPath := filepath.Join(tempDir, fmt.Sprintf("%d-%d%s", userID, time.Now().UnixNano(), ext))
	dst, err := os.Create(tempPath)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tempPath)
		return nil, err
	}
	dst.Close()
	defer os.Remove(tempPath)

	var duration float64
	if info, err := util.ProbeAudio(tempPath); err != nil {
		logger.Log.Warn("音频时长探测失败", zap.String("file", file.Filename), zap.Error(err))
	} else {
		duration = info.Duration
	}

	filename := "answers/" + time.Now().Format("20060102150405") + "-" +
		strings.ReplaceAll(strings.TrimSuffix(file.Filename, ext), " ", "-") + ext
	url, err := s.Storage.UploadFile(ctx, filename, tempPath, file.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	return &AudioUploadResult{
		URL:      url,
		Duration: duration,
		Size:     file.Size,
		Format:   strings.TrimPrefix(ext, "."),
	}, nil
}
