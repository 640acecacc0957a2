package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spotcheck/spotfeed/internal/feed"
	"github.com/spotcheck/spotfeed/internal/models"
	"github.com/spotcheck/spotfeed/pkg/logging"
)

// Handlers exposes the aggregation and write-pipeline operations over HTTP.
// This surface is a thin collaborator: it parses requests, delegates and
// renders read models.
type Handlers struct {
	posts   *feed.PostAggregator
	answers *feed.AnswerAggregator
	ledger  *feed.VoteLedger
	writer  *feed.Writer
	catalog *feed.CatalogResolver
	logger  *zap.Logger
}

// NewHandlers creates the API handlers.
func NewHandlers(posts *feed.PostAggregator, answers *feed.AnswerAggregator, ledger *feed.VoteLedger, writer *feed.Writer, catalog *feed.CatalogResolver) *Handlers {
	return &Handlers{
		posts:   posts,
		answers: answers,
		ledger:  ledger,
		writer:  writer,
		catalog: catalog,
		logger:  logging.WithComponent("api"),
	}
}

func (h *Handlers) listPosts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	cursor := c.Query("cursor")

	page, err := h.posts.ListPostsPage(c.Request.Context(), currentUserID(c), limit, cursor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handlers) getPost(c *gin.Context) {
	post, err := h.posts.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

type createPostRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	ExerciseIDs []string `json:"exercise_ids"`
}

func (h *Handlers) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.writer.CreatePost(c.Request.Context(), feed.CreatePostInput{
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   currentUserID(c),
		ExerciseIDs: req.ExerciseIDs,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": doc.ID})
}

type updatePostRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (h *Handlers) updatePost(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}

	if err := h.writer.UpdatePost(c.Request.Context(), c.Param("id"), fields); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) deletePost(c *gin.Context) {
	if err := h.writer.DeletePost(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) attachImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image file"})
		return
	}
	defer file.Close()

	objectName, err := h.writer.AttachImage(c.Request.Context(), c.Param("id"), header.Filename, file, header.Size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_path": objectName})
}

func (h *Handlers) listAnswers(c *gin.Context) {
	answers, err := h.answers.AnswersForPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answers": answers})
}

type writeAnswerRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *Handlers) writeAnswer(c *gin.Context) {
	var req writeAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.writer.WriteAnswer(c.Request.Context(), feed.WriteAnswerInput{
		PostID:    c.Param("id"),
		CreatedBy: currentUserID(c),
		Text:      req.Text,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": doc.ID})
}

func (h *Handlers) deleteAnswer(c *gin.Context) {
	if err := h.writer.DeleteAnswer(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type voteRequest struct {
	Direction string `json:"direction" binding:"required"`
}

func parseDirection(s string) (models.VoteDirection, bool) {
	switch s {
	case "up":
		return models.VoteUp, true
	case "down":
		return models.VoteDown, true
	case "neutral":
		return models.VoteNeutral, true
	}
	return models.VoteNeutral, false
}

func (h *Handlers) votePost(c *gin.Context) {
	h.vote(c, models.KindPost)
}

func (h *Handlers) voteAnswer(c *gin.Context) {
	h.vote(c, models.KindAnswer)
}

func (h *Handlers) vote(c *gin.Context, kind models.ContentKind) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	direction, ok := parseDirection(req.Direction)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be up, down or neutral"})
		return
	}

	if err := h.ledger.SetVote(c.Request.Context(), kind, c.Param("id"), currentUserID(c), direction); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) likePost(c *gin.Context) {
	liked, err := h.writer.SetLike(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

func (h *Handlers) recordView(c *gin.Context) {
	if err := h.writer.RecordView(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) listPostsByUser(c *gin.Context) {
	page, err := h.posts.ListPostsByAuthor(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handlers) listAnswersByUser(c *gin.Context) {
	answers, err := h.answers.AnswersByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answers": answers})
}

func (h *Handlers) listExercises(c *gin.Context) {
	catalog, err := h.catalog.Catalog(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	exercises := make([]models.Exercise, 0, len(catalog))
	for _, exercise := range catalog {
		exercises = append(exercises, exercise)
	}
	c.JSON(http.StatusOK, gin.H{"exercises": exercises})
}

func (h *Handlers) clearCache(c *gin.Context) {
	if err := h.writer.ClearCache(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
