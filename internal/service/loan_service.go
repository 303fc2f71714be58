package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"loan-assist-be/internal/constant"
	"loan-assist-be/internal/dto"
	"loan-assist-be/internal/pkg/logger"
	"loan-assist-be/internal/pkg/serverutils"
	"loan-assist-be/pkg/llm"
)

type ILoanService interface {
	Analyze(ctx context.Context, req *dto.AnalyzeLoanRequest) (*dto.AnalyzeLoanResponse, error)
}

type loanService struct {
	provider llm.LLMProvider
	timeout  time.Duration
	logger   logger.ILogger
}

func NewLoanService(provider llm.LLMProvider, timeout time.Duration, log logger.ILogger) ILoanService {
	return &loanService{provider: provider, timeout: timeout, logger: log}
}

// Analyze runs a one-shot underwriting review over free-form application text.
func (s *loanService) Analyze(ctx context.Context, req *dto.AnalyzeLoanRequest) (*dto.AnalyzeLoanResponse, error) {
	if s.provider == nil {
		return nil, serverutils.NewConfigurationError("Generative model is not configured", nil)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text := strings.TrimSpace(req.ApplicationText)
	result, err := s.provider.Generate(ctx, fmt.Sprintf(constant.UnderwritingPromptV1, text),
		llm.WithTemperature(constant.AnalyzeTemperature),
		llm.WithMaxTokens(constant.AnalyzeMaxOutputTokens),
	)
	if err == nil && strings.TrimSpace(result) == "" {
		err = errors.New("model returned an empty analysis")
	}
	if err != nil {
		s.logger.Error("LoanService", "Loan analysis failed", map[string]interface{}{
			"application_length": len(text),
			"error":              err,
		})
		return nil, serverutils.NewUpstreamError("Loan analysis failed", err)
	}

	return &dto.AnalyzeLoanResponse{
		Success: true,
		Result:  strings.TrimSpace(result),
	}, nil
}
