package words

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"
)

// Calculus generates small arithmetic problems. The display is the
// expression, the label is its result, so claiming means typing the answer.
type Calculus struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewCalculus returns a time-seeded problem generator.
func NewCalculus() *Calculus {
	return &Calculus{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Generate returns up to count problems with distinct results. Collisions are
// retried a bounded number of times, so a batch can come back short on the
// narrow easy range; callers run the round with what they got.
func (c *Calculus) Generate(ctx context.Context, count int, difficulty Difficulty) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{}, count)
	out := make([]Word, 0, count)
	for attempts := 0; len(out) < count && attempts < count*25; attempts++ {
		display, result := c.problem(difficulty)
		label := strconv.Itoa(result)
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, Word{Label: label, Display: display})
	}
	return out, nil
}

func (c *Calculus) problem(difficulty Difficulty) (string, int) {
	switch difficulty {
	case DifficultyNormal:
		switch c.rng.Intn(3) {
		case 0:
			a, b := c.rng.Intn(90)+10, c.rng.Intn(90)+10
			return fmt.Sprintf("%d + %d", a, b), a + b
		case 1:
			a := c.rng.Intn(90) + 10
			b := c.rng.Intn(a) + 1
			return fmt.Sprintf("%d - %d", a, b), a - b
		default:
			a, b := c.rng.Intn(8)+2, c.rng.Intn(8)+2
			return fmt.Sprintf("%d * %d", a, b), a * b
		}
	case DifficultyHard:
		switch c.rng.Intn(3) {
		case 0:
			a, b := c.rng.Intn(8)+2, c.rng.Intn(8)+2
			add := c.rng.Intn(50) + 1
			return fmt.Sprintf("%d * %d + %d", a, b, add), a*b + add
		case 1:
			b := c.rng.Intn(8) + 2
			q := c.rng.Intn(11) + 2
			return fmt.Sprintf("%d / %d", b*q, b), q
		default:
			a, b := c.rng.Intn(900)+100, c.rng.Intn(900)+100
			return fmt.Sprintf("%d + %d", a, b), a + b
		}
	default: // easy
		a, b := c.rng.Intn(20)+1, c.rng.Intn(20)+1
		return fmt.Sprintf("%d + %d", a, b), a + b
	}
}
