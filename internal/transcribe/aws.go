package transcribe

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awstranscribe "github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/transcribe/types"
)

// AWSClient implements Client against Amazon Transcribe.
type AWSClient struct {
	client *awstranscribe.Client
}

// NewAWSClient creates a transcription client from a resolved AWS config.
func NewAWSClient(cfg aws.Config) *AWSClient {
	return &AWSClient{client: awstranscribe.NewFromConfig(cfg)}
}

// NewAWSClientFrom wraps an already-constructed service client.
func NewAWSClientFrom(client *awstranscribe.Client) *AWSClient {
	return &AWSClient{client: client}
}

func (c *AWSClient) StartJob(ctx context.Context, input StartJobInput) error {
	req := &awstranscribe.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(input.Name),
		Media: &types.Media{
			MediaFileUri: aws.String(input.MediaURI),
		},
		MediaFormat:  types.MediaFormat(input.MediaFormat),
		LanguageCode: types.LanguageCode(input.Language),
	}
	if input.MaxSpeakers > 1 {
		req.Settings = &types.Settings{
			ShowSpeakerLabels: aws.Bool(true),
			MaxSpeakerLabels:  aws.Int32(int32(input.MaxSpeakers)),
		}
	}
	if _, err := c.client.StartTranscriptionJob(ctx, req); err != nil {
		return fmt.Errorf("start transcription job %s: %w", input.Name, err)
	}
	return nil
}

func (c *AWSClient) GetJob(ctx context.Context, name string) (*Job, error) {
	out, err := c.client.GetTranscriptionJob(ctx, &awstranscribe.GetTranscriptionJobInput{
		TranscriptionJobName: aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("get transcription job %s: %w", name, err)
	}
	tj := out.TranscriptionJob
	job := &Job{
		Name:   name,
		Status: JobStatus(tj.TranscriptionJobStatus),
	}
	if tj.Transcript != nil && tj.Transcript.TranscriptFileUri != nil {
		job.ResultURI = *tj.Transcript.TranscriptFileUri
	}
	if tj.FailureReason != nil {
		job.FailureReason = *tj.FailureReason
	}
	return job, nil
}

func (c *AWSClient) DeleteJob(ctx context.Context, name string) error {
	_, err := c.client.DeleteTranscriptionJob(ctx, &awstranscribe.DeleteTranscriptionJobInput{
		TranscriptionJobName: aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("delete transcription job %s: %w", name, err)
	}
	return nil
}
