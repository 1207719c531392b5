package confirmation

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ErrDuplicate is returned when a generated code has already been issued.
var ErrDuplicate = errors.New("confirmation code already issued")

// Alphabet excludes visually ambiguous characters since codes are read
// aloud at check-in.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the canonical confirmation code length.
const CodeLength = 8

// Generator produces candidate confirmation codes. Uniqueness is not
// guaranteed; collisions are detected by the Registry and retried by the
// caller.
type Generator interface {
	Generate() (string, error)
}

// Registry claims codes, rejecting duplicates.
type Registry interface {
	Claim(ctx context.Context, code string) error
}

// RandomGenerator draws codes from crypto/rand.
type RandomGenerator struct {
	Length int
}

// Generate implements Generator.
func (g RandomGenerator) Generate() (string, error) {
	length := g.Length
	if length <= 0 {
		length = CodeLength
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("confirmation: read random: %w", err)
	}
	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(buf), nil
}

// Issuer combines a Generator with a Registry and performs the single
// collision retry before surfacing the duplicate.
type Issuer struct {
	Gen Generator
	Reg Registry
}

// Issue returns a claimed, unique confirmation code. One collision is
// retried automatically; a second collision is surfaced as ErrDuplicate.
func (i Issuer) Issue(ctx context.Context) (string, error) {
	if i.Gen == nil || i.Reg == nil {
		return "", errors.New("confirmation: issuer not configured")
	}
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		code, err := i.Gen.Generate()
		if err != nil {
			return "", err
		}
		if err := i.Reg.Claim(ctx, code); err != nil {
			if errors.Is(err, ErrDuplicate) {
				lastErr = err
				continue
			}
			return "", err
		}
		return code, nil
	}
	return "", lastErr
}

// MemoryRegistry tracks issued codes in process memory.
type MemoryRegistry struct {
	mu     sync.Mutex
	issued map[string]struct{}
}

// NewMemoryRegistry returns an empty MemoryRegistry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{issued: make(map[string]struct{})}
}

// Claim implements Registry.
func (r *MemoryRegistry) Claim(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.issued[code]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, code)
	}
	r.issued[code] = struct{}{}
	return nil
}

// RedisRegistry claims codes via SETNX so multiple API instances share one
// uniqueness domain.
type RedisRegistry struct {
	R      *redis.Client
	Prefix string
}

// Claim implements Registry.
func (r RedisRegistry) Claim(ctx context.Context, code string) error {
	if r.R == nil {
		return errors.New("confirmation: redis client not configured")
	}
	prefix := r.Prefix
	if prefix == "" {
		prefix = "conf:"
	}
	ok, err := r.R.SetNX(ctx, prefix+code, 1, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, code)
	}
	return nil
}
