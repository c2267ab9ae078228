package connection

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig содержит конфигурацию повторных попыток
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
}

// DefaultRetryConfig возвращает конфигурацию по умолчанию
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  5,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// FixedRetry retries повторов после первой попытки с постоянной паузой
func FixedRetry(retries int, interval time.Duration) RetryConfig {
	return RetryConfig{
		MaxAttempts:  retries + 1,
		InitialDelay: interval,
		MaxDelay:     interval,
		Multiplier:   1,
	}
}

// RetryFunc представляет функцию для повторной попытки
type RetryFunc func(ctx context.Context) error

// WithRetry выполняет operation до первого успеха или исчерпания попыток.
// Возвращает ошибку последней попытки; отмена ctx прерывает ожидание.
func WithRetry(ctx context.Context, config RetryConfig, operation RetryFunc) error {
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = operation(ctx); lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(calculateDelay(attempt, config))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

// calculateDelay вычисляет задержку перед попыткой attempt+1
func calculateDelay(attempt int, config RetryConfig) time.Duration {
	multiplier := config.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	delay := time.Duration(float64(config.InitialDelay) * math.Pow(multiplier, float64(attempt-1)))

	if config.MaxDelay > 0 && delay > config.MaxDelay {
		delay = config.MaxDelay
	}

	if config.Jitter && delay > 0 {
		delay = addJitter(delay)
	}

	return delay
}

// addJitter добавляет случайную вариацию ±25%
func addJitter(delay time.Duration) time.Duration {
	spread := int64(delay) / 2
	if spread <= 0 {
		return delay
	}
	return delay - time.Duration(spread/2) + time.Duration(rand.Int64N(spread))
}
