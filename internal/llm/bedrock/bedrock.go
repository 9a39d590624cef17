// Package bedrock implements llm.Generator using the Amazon Bedrock
// Converse API.
package bedrock

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/skillsenselab/osce-insight/internal/llm"
)

// ProviderName identifies this backend in logs.
const ProviderName = "bedrock"

const (
	defaultMaxTokens   = 4096
	defaultTemperature = float32(0.2)
)

// Config holds configuration for the Bedrock generator.
type Config struct {
	// ModelID is the default model, used when a request does not set one.
	ModelID string
}

// Generator implements llm.Generator against Amazon Bedrock.
type Generator struct {
	client *bedrockruntime.Client
	cfg    Config
}

// NewGenerator creates a Bedrock generator from a resolved AWS config.
func NewGenerator(awsCfg aws.Config, cfg Config) *Generator {
	return &Generator{client: bedrockruntime.NewFromConfig(awsCfg), cfg: cfg}
}

// NewGeneratorFrom wraps an already-constructed service client.
func NewGeneratorFrom(client *bedrockruntime.Client, cfg Config) *Generator {
	return &Generator{client: client, cfg: cfg}
}

func (g *Generator) Name() string { return ProviderName }

func (g *Generator) Generate(ctx context.Context, req llm.Request) (string, error) {
	modelID := req.ModelID
	if modelID == "" {
		modelID = g.cfg.ModelID
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	out, err := g.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(modelID),
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: req.Prompt},
				},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(maxTokens)),
			Temperature: aws.Float32(temperature),
		},
	})
	if err != nil {
		return "", fmt.Errorf("bedrock converse: %w", err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("bedrock converse: unexpected output type %T", out.Output)
	}

	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("bedrock converse: response contained no text content")
	}
	return sb.String(), nil
}
