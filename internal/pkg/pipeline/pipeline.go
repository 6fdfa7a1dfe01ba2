// Package pipeline runs an uploaded PDF end to end: quota admission,
// download, text extraction, summarization, and delivery back into Slack.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/DocBriefHQ/DocBrief/internal/pkg/pdftext"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/slackapi"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/subscription"
	"github.com/google/uuid"
)

// Job stages, in processing order.
const (
	StageReceived    = "received"
	StageDownloading = "downloading"
	StageExtracting  = "extracting"
	StageSummarizing = "summarizing"
	StageRecording   = "recording"
	StageDelivering  = "delivering"
	StageDone        = "done"
	StageFailed      = "failed"
)

// SlackGateway is the slice of the Slack API the pipeline uses.
type SlackGateway interface {
	PostMessage(ctx context.Context, channel, text, threadTS string) error
	OpenDM(ctx context.Context, userID string) (string, error)
	FileInfo(ctx context.Context, fileID string) (slackapi.File, error)
	DownloadFile(ctx context.Context, urlPrivate string) ([]byte, error)
}

// Summarizer produces a summary for a block of text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Quota is the slice of the subscription service the pipeline consults.
type Quota interface {
	CheckUsageLimit(userID, teamID string) bool
	RecordUsage(userID, teamID, fileName string) error
	CheckExpiry(userID, teamID string) (*subscription.ExpiryWarning, error)
}

// Request identifies one file upload to process. ThreadTS, when set, makes
// replies land in the mention's thread.
type Request struct {
	FileID   string
	UserID   string
	TeamID   string
	Channel  string
	ThreadTS string
}

// Job tracks one run through the pipeline.
type Job struct {
	ID        string
	FileID    string
	FileName  string
	UserID    string
	TeamID    string
	Channel   string
	ThreadTS  string
	Stage     string
	StartedAt time.Time
}

// Pipeline wires the collaborators together.
type Pipeline struct {
	slack       SlackGateway
	summarizer  Summarizer
	extractor   pdftext.Extractor
	quota       Quota
	upgradeLink string
}

// New builds a pipeline. upgradeLink may be empty, in which case
// limit-reached messages omit it.
func New(slack SlackGateway, summarizer Summarizer, extractor pdftext.Extractor, quota Quota, upgradeLink string) *Pipeline {
	return &Pipeline{
		slack:       slack,
		summarizer:  summarizer,
		extractor:   extractor,
		quota:       quota,
		upgradeLink: upgradeLink,
	}
}

// ProcessFile runs one upload through the pipeline. User-visible failures
// are reported into Slack; the returned error is for logging and metrics.
func (p *Pipeline) ProcessFile(ctx context.Context, req Request) error {
	job := &Job{
		ID:        uuid.NewString(),
		FileID:    req.FileID,
		UserID:    req.UserID,
		TeamID:    req.TeamID,
		Channel:   req.Channel,
		ThreadTS:  req.ThreadTS,
		Stage:     StageReceived,
		StartedAt: time.Now(),
	}

	if !p.quota.CheckUsageLimit(req.UserID, req.TeamID) {
		job.Stage = StageDone
		return p.deliver(ctx, job, p.limitMessage())
	}

	job.Stage = StageDownloading
	file, err := p.slack.FileInfo(ctx, req.FileID)
	if err != nil {
		job.Stage = StageFailed
		p.apologize(ctx, job)
		return fmt.Errorf("file info for %s: %w", req.FileID, err)
	}
	job.FileName = file.Name
	if !file.IsPDF() {
		log.Printf("pipeline: job %s skipping non-pdf file %s (%s)", job.ID, file.Name, file.Mimetype)
		job.Stage = StageDone
		return nil
	}

	data, err := p.slack.DownloadFile(ctx, file.URLPrivate)
	if err != nil {
		job.Stage = StageFailed
		p.apologize(ctx, job)
		return fmt.Errorf("download %s: %w", file.Name, err)
	}

	job.Stage = StageExtracting
	text, err := p.extractor.ExtractText(data)
	if err != nil {
		job.Stage = StageFailed
		p.apologize(ctx, job)
		return &ExtractionError{FileName: file.Name, Err: err}
	}

	job.Stage = StageSummarizing
	summary, err := p.SummarizeDocument(ctx, text)
	if err != nil {
		job.Stage = StageFailed
		p.apologize(ctx, job)
		return &SummarizationError{FileName: file.Name, Err: err}
	}

	// Usage counts once the summary exists, whether or not delivery lands.
	job.Stage = StageRecording
	if err := p.quota.RecordUsage(req.UserID, req.TeamID, file.Name); err != nil {
		log.Printf("pipeline: job %s usage recording failed: %v", job.ID, err)
	}

	job.Stage = StageDelivering
	message := fmt.Sprintf(":page_facing_up: *Summary of %s*\n\n%s", file.Name, summary)
	if err := p.deliver(ctx, job, message); err != nil {
		job.Stage = StageFailed
		return &DeliveryError{FileName: file.Name, Err: err}
	}

	p.warnExpiry(ctx, job)

	job.Stage = StageDone
	return nil
}

// PostUsageHint tells a channel how to use the bot; posted in the mention's
// thread when the bot is mentioned without a PDF attached.
func (p *Pipeline) PostUsageHint(ctx context.Context, channel, threadTS string) error {
	return p.slack.PostMessage(ctx, channel, "Mention me with a PDF attached and I'll summarize it for you.", threadTS)
}

// SummarizeDocument summarizes text, chunking oversized documents and
// joining the per-chunk summaries in document order.
func (p *Pipeline) SummarizeDocument(ctx context.Context, text string) (string, error) {
	if len(text) <= ChunkSize {
		return p.summarizer.Summarize(ctx, text)
	}

	chunks := SplitChunks(text)
	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		part, err := p.summarizer.Summarize(ctx, chunk)
		if err != nil {
			return "", fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "\n\n"), nil
}

// deliver posts to the requested channel as a threaded reply, falling back
// to a DM exactly once. With no channel on the request the message goes
// straight to a DM, without the fallback note.
func (p *Pipeline) deliver(ctx context.Context, job *Job, text string) error {
	if job.Channel == "" {
		dm, err := p.slack.OpenDM(ctx, job.UserID)
		if err != nil {
			return err
		}
		return p.slack.PostMessage(ctx, dm, text, "")
	}

	channelErr := p.slack.PostMessage(ctx, job.Channel, text, job.ThreadTS)
	if channelErr == nil {
		return nil
	}
	log.Printf("pipeline: job %s channel post failed, trying dm: %v", job.ID, channelErr)

	dm, err := p.slack.OpenDM(ctx, job.UserID)
	if err != nil {
		return errors.Join(channelErr, err)
	}
	fallback := "I couldn't post in the channel, so I'm sending this here instead.\n\n" + text
	if err := p.slack.PostMessage(ctx, dm, fallback, ""); err != nil {
		return errors.Join(channelErr, err)
	}
	return nil
}

// apologize tells the user we failed, via DM; best effort.
func (p *Pipeline) apologize(ctx context.Context, job *Job) {
	name := job.FileName
	if name == "" {
		name = "your file"
	}
	text := fmt.Sprintf("Sorry, I couldn't process %s. Please make sure it's a readable PDF and try again.", name)

	dm, err := p.slack.OpenDM(ctx, job.UserID)
	if err != nil {
		log.Printf("pipeline: job %s apology dm open failed: %v", job.ID, err)
		return
	}
	if err := p.slack.PostMessage(ctx, dm, text, ""); err != nil {
		log.Printf("pipeline: job %s apology dm post failed: %v", job.ID, err)
	}
}

// warnExpiry nudges the user when their subscription is about to lapse;
// best effort.
func (p *Pipeline) warnExpiry(ctx context.Context, job *Job) {
	warning, err := p.quota.CheckExpiry(job.UserID, job.TeamID)
	if err != nil {
		log.Printf("pipeline: job %s expiry check failed: %v", job.ID, err)
		return
	}
	if warning == nil {
		return
	}
	text := fmt.Sprintf(":warning: Your %s subscription expires in %d day(s). Renew to keep your limits.", warning.Tier, warning.DaysRemaining)
	if err := p.deliver(ctx, job, text); err != nil {
		log.Printf("pipeline: job %s expiry warning delivery failed: %v", job.ID, err)
	}
}

func (p *Pipeline) limitMessage() string {
	msg := "You've reached your monthly summary limit."
	if p.upgradeLink != "" {
		msg += " Upgrade your plan to keep going: " + p.upgradeLink
	}
	return msg
}
