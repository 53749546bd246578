package predict

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/rs/zerolog/log"
)

const anthropicVersion = "bedrock-2023-05-31"

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// BedrockService invokes an Anthropic model hosted on AWS Bedrock using the
// messages body format. Each prompt becomes a single user message; the reply
// is the text of the first content block.
type BedrockService struct {
	client    *bedrockruntime.Client
	modelID   string
	maxTokens int
}

// NewBedrockService resolves AWS credentials from the default chain for the
// given region and returns a ready service.
func NewBedrockService(ctx context.Context, region, modelID string, maxTokens int) (*BedrockService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &BedrockService{
		client:    bedrockruntime.NewFromConfig(cfg),
		modelID:   modelID,
		maxTokens: maxTokens,
	}, nil
}

func (s *BedrockService) Predict(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        s.maxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	out, err := s.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(s.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		log.Warn().Err(err).Str("model_id", s.modelID).Msg("bedrock invocation failed")
		return "", err
	}

	var resp anthropicResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		log.Warn().Err(err).Msg("bedrock response body was not valid JSON")
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Content[0].Text), nil
}
