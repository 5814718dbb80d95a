package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"lexline/internal/models"
	"lexline/internal/repository"
	"lexline/internal/services"
	"lexline/internal/websocket"
)

// defaultMaxRetries applies when a job carries no retry limit of its own.
const defaultMaxRetries = 3

// Pool runs the background document-analysis workers. Jobs arrive over a
// redis list so uploads survive restarts, and a redis lock keeps two
// instances from reviewing the same document.
type Pool struct {
	redis        *redis.Client
	assistant    *services.Assistant
	extractor    *services.TextExtractor
	hub          *websocket.Hub
	documentRepo *repository.DocumentRepo
	jobRepo      *repository.JobRepo
	messageRepo  *repository.MessageRepo
	workerCount  int
	stopChan     chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	assistant *services.Assistant,
	extractor *services.TextExtractor,
	hub *websocket.Hub,
	documentRepo *repository.DocumentRepo,
	jobRepo *repository.JobRepo,
	messageRepo *repository.MessageRepo,
	workerCount int,
) *Pool {
	return &Pool{
		redis:        redisClient,
		assistant:    assistant,
		extractor:    extractor,
		hub:          hub,
		documentRepo: documentRepo,
		jobRepo:      jobRepo,
		messageRepo:  messageRepo,
		workerCount:  workerCount,
		stopChan:     make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, services.DocumentQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.QueuedDocumentJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Try to acquire lock
		lockKey := fmt.Sprintf("job_lock:%s", job.JobID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		log.Printf("Worker %d: processing document job %s", id, job.JobID)

		p.jobRepo.UpdateStatus(ctx, job.JobID, "processing")
		p.documentRepo.UpdateStatus(ctx, job.DocumentID, "processing")

		if processErr := p.processDocument(ctx, &job); processErr != nil {
			p.handleFailure(ctx, &job, processErr)
		} else {
			p.handleSuccess(ctx, &job)
		}

		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) processDocument(ctx context.Context, job *models.QueuedDocumentJob) error {
	doc, err := p.documentRepo.GetByID(ctx, job.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to get document record: %w", err)
	}

	p.publishUpdate(ctx, job.SessionID, models.WSMessage{
		Type: "status_update",
		Payload: models.StatusUpdate{
			JobID:    job.JobID,
			Step:     1,
			StepName: "Extracting document text",
		},
	})

	text, err := p.extractor.ExtractTextFromPath(job.FilePath)
	if err != nil {
		return fmt.Errorf("failed to extract text from %s: %w", doc.Filename, err)
	}
	if len(text) < 50 {
		return fmt.Errorf("document %s contains too little readable text", doc.Filename)
	}

	p.publishUpdate(ctx, job.SessionID, models.WSMessage{
		Type: "status_update",
		Payload: models.StatusUpdate{
			JobID:    job.JobID,
			Step:     2,
			StepName: "Analyzing legal arguments",
		},
	})

	analysis, err := p.assistant.AnalyzeSkeletonArgument(ctx, text)
	if err != nil {
		return fmt.Errorf("AI review failed for %s: %w", doc.Filename, err)
	}

	claimantJSON, _ := json.Marshal(analysis.ClaimantArguments)
	defenceJSON, _ := json.Marshal(analysis.DefencePoints)
	categoriesJSON, _ := json.Marshal(analysis.LegalCategories)

	if err := p.documentRepo.SaveResult(ctx, job.DocumentID, text, analysis, claimantJSON, defenceJSON, categoriesJSON); err != nil {
		return fmt.Errorf("failed to save analysis result: %w", err)
	}

	// Record the review as a chat turn and push it to any open tabs so the
	// defence analysis shows up in the conversation.
	response := &models.BotResponse{
		Type:      "success",
		Message:   services.FormatDefenceResponse(analysis, doc.Filename),
		TrackType: analysis.TrackAssessment,
	}
	if len(analysis.LegalCategories) > 0 {
		response.LegalCategory = analysis.LegalCategories[0]
	}

	if err := p.saveChatTurn(ctx, job.SessionID, doc.Filename, response); err != nil {
		log.Printf("Failed to save document analysis chat turn for %s: %v", job.SessionID, err)
	}

	p.hub.Publish(ctx, job.SessionID, models.EventBotResponse, response)

	return nil
}

func (p *Pool) saveChatTurn(ctx context.Context, sessionID uuid.UUID, filename string, response *models.BotResponse) error {
	citations, err := json.Marshal(response.Citations)
	if err != nil {
		citations = []byte("[]")
	}

	msg := &models.ChatMessage{
		ID:        uuid.New(),
		SessionID: sessionID,
		Message:   "Uploaded document: " + filename,
		Response:  response.Message,
		Citations: citations,
	}
	if response.LegalCategory != "" {
		msg.LegalCategory = &response.LegalCategory
	}

	return p.messageRepo.Create(ctx, msg)
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.QueuedDocumentJob) {
	p.jobRepo.UpdateStatus(ctx, job.JobID, "completed")

	p.publishUpdate(ctx, job.SessionID, models.WSMessage{
		Type: "completed",
		Payload: models.CompletedEvent{
			JobID:      job.JobID,
			ResultID:   job.DocumentID,
			ResultType: "document-analysis",
		},
	})

	log.Printf("Document job %s completed successfully", job.JobID)
}

func (p *Pool) handleFailure(ctx context.Context, job *models.QueuedDocumentJob, err error) {
	errMsg := err.Error()

	stored, getErr := p.jobRepo.GetByID(ctx, job.JobID)
	retryCount, retry := retryDecision(stored, getErr)

	if retry {
		log.Printf("Document job %s failed (attempt %d): %s, retrying", job.JobID, retryCount, errMsg)
		p.jobRepo.UpdateStatus(ctx, job.JobID, "pending")
		p.jobRepo.UpdateError(ctx, job.JobID, errMsg, retryCount)

		// Re-queue after backoff
		jobBytes, _ := json.Marshal(job)
		backoff := time.Duration(1<<uint(retryCount)) * time.Second
		time.AfterFunc(backoff, func() {
			p.redis.LPush(context.Background(), services.DocumentQueue, string(jobBytes))
		})
		return
	}

	log.Printf("Document job %s failed permanently: %s", job.JobID, errMsg)
	p.jobRepo.UpdateStatus(ctx, job.JobID, "failed")
	p.jobRepo.UpdateError(ctx, job.JobID, errMsg, retryCount)
	p.documentRepo.UpdateStatus(ctx, job.DocumentID, "failed")

	p.publishUpdate(ctx, job.SessionID, models.WSMessage{
		Type: "error",
		Payload: models.ErrorEvent{
			JobID:        job.JobID,
			ErrorCode:    "ANALYSIS_FAILED",
			ErrorMessage: "We could not analyze this document. Please check the file and try again.",
		},
	})
}

// retryDecision computes the attempt number for a failed job and whether it
// should be requeued. The job's own retry limit wins; a job whose row cannot
// be loaded fails permanently.
func retryDecision(stored *models.Job, getErr error) (attempt int, retry bool) {
	if getErr != nil {
		return defaultMaxRetries, false
	}
	limit := stored.MaxRetries
	if limit <= 0 {
		limit = defaultMaxRetries
	}
	attempt = stored.RetryCount + 1
	return attempt, attempt < limit
}

func (p *Pool) publishUpdate(ctx context.Context, sessionID uuid.UUID, msg models.WSMessage) {
	p.hub.Publish(ctx, sessionID, "job_update", msg)
}
