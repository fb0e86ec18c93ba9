package controller

import (
	"strconv"

	"interview_coach_backend/internal/model"
	"interview_coach_backend/internal/service"
	"interview_coach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type InterviewController struct {
	Interview       *service.InterviewService
	Analytics       *service.AnalyticsService
	Recommendations *service.RecommendationService
	Audio           *service.AudioService
}

func NewInterviewController(
	interview *service.InterviewService,
	analytics *service.AnalyticsService,
	recommendations *service.RecommendationService,
	audio *service.AudioService,
) *InterviewController {
	return &InterviewController{
		Interview:       interview,
		Analytics:       analytics,
		Recommendations: recommendations,
		Audio:           audio,
	}
}

// loadOwnedSession 加载会话并校验归属，非本人会话按不存在处理
func (c *InterviewController) loadOwnedSession(ctx *gin.Context) (*model.InterviewSession, bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return nil, false
	}

	session, err := c.Interview.GetSession(ctx.Param("id"))
	if err != nil {
		util.DomainError(ctx, err)
		return nil, false
	}
	if session.UserID != user.UserID {
		util.DomainError(ctx, util.ErrSessionNotFound)
		return nil, false
	}
	return session, true
}

// @Summary 开始模拟面试
// @Tags 模拟面试
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.StartInterviewRequest true "会话配置"
// @Success 201 {object} util.Response
// @Router /api/interviews/start [post]
func (c *InterviewController) StartInterview(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.StartInterviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Interview.StartInterview(user.UserID, req)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}

	util.Created(ctx, result)
}

// @Summary 获取下一道面试题
// @Tags 模拟面试
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/interviews/{id}/next [get]
func (c *InterviewController) GetNextQuestion(ctx *gin.Context) {
	session, ok := c.loadOwnedSession(ctx)
	if !ok {
		return
	}

	result, err := c.Interview.GetNextQuestion(session.ID)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 提交回答
// @Tags 模拟面试
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Param body body service.SubmitAnswerRequest true "回答内容"
// @Success 200 {object} util.Response
// @Router /api/interviews/{id}/answer [post]
func (c *InterviewController) SubmitAnswer(ctx *gin.Context) {
	session, ok := c.loadOwnedSession(ctx)
	if !ok {
		return
	}

	var req service.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Interview.SubmitAnswer(session.ID, req)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 结束面试并生成综合反馈
// @Tags 模拟面试
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/interviews/{id}/complete [post]
func (c *InterviewController) CompleteInterview(ctx *gin.Context) {
	session, ok := c.loadOwnedSession(ctx)
	if !ok {
		return
	}

	result, err := c.Interview.CompleteInterview(session.ID)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 获取会话详情
// @Tags 模拟面试
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/interviews/{id} [get]
func (c *InterviewController) GetSession(ctx *gin.Context) {
	session, ok := c.loadOwnedSession(ctx)
	if !ok {
		return
	}

	util.Success(ctx, session)
}

// @Summary 获取面试历史
// @Tags 模拟面试
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} util.Response
// @Router /api/interviews/history [get]
func (c *InterviewController) GetHistory(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	sessions, total, err := c.Interview.GetHistory(user.UserID, page, limit)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, gin.H{"items": sessions, "total": total, "page": page, "limit": limit})
}

// @Summary 获取面试统计
// @Tags 面试分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/interviews/stats [get]
func (c *InterviewController) GetStats(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.Analytics.GetInterviewStats(user.UserID)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, stats)
}

// @Summary 获取进步趋势
// @Tags 面试分析
// @Produce json
// @Security BearerAuth
// @Param sessionType query string false "会话类型，为空时统计全部"
// @Success 200 {object} util.Response
// @Router /api/interviews/improvement [get]
func (c *InterviewController) GetImprovement(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	sessionType := model.SessionType(ctx.Query("sessionType"))
	if sessionType != "" && !model.ValidSessionType(sessionType) {
		util.DomainError(ctx, util.NewValidationError("sessionType", string(sessionType),
			"technical", "behavioral", "case_study", "hr", "coding", "mixed"))
		return
	}

	trend, err := c.Analytics.TrackImprovement(user.UserID, sessionType)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, trend)
}

// @Summary 获取个性化练习建议
// @Tags 面试分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/interviews/recommendations [get]
func (c *InterviewController) GetRecommendations(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	recs, err := c.Recommendations.GetPersonalizedRecommendations(user.UserID)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, recs)
}

// @Summary 上传语音回答
// @Tags 模拟面试
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "音频文件"
// @Success 200 {object} util.Response
// @Router /api/interviews/audio [post]
func (c *InterviewController) UploadAudio(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	result, err := c.Audio.UploadAnswerAudio(ctx, user.UserID, file)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
