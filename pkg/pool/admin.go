package pool

import (
	"fmt"
	"strings"
	"time"
)

// Summary is the coarse /stats counts, mirroring get_stats.
type Summary struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Cooling int `json:"cooling"`
	Failed  int `json:"failed"`
}

// Performance is the aggregate request/success accounting folded into
// /stats per SPEC_FULL's "performance block" supplement.
type Performance struct {
	TotalRequests         int     `json:"total_requests"`
	SuccessfulRequests    int     `json:"successful_requests"`
	SuccessRate           float64 `json:"success_rate"`
	AverageRequestsPerKey float64 `json:"average_requests_per_key"`
}

// KeyDetail is one key's row in the admin detailed view, with the key
// itself redacted to its key_id form.
type KeyDetail struct {
	KeyID              string  `json:"key_id"`
	Status             Status  `json:"status"`
	FailureCount       int     `json:"failure_count"`
	TotalRequests      int     `json:"total_requests"`
	SuccessfulRequests int     `json:"successful_requests"`
	SuccessRate        float64 `json:"success_rate"`
	CoolingUntil       *int64  `json:"cooling_until,omitempty"`
	CoolingRemaining   float64 `json:"cooling_remaining"`
	LastUsed           *int64  `json:"last_used,omitempty"`
}

// Detailed is the full admin statistics payload.
type Detailed struct {
	Summary     Summary     `json:"summary"`
	Performance Performance `json:"performance"`
	Keys        []KeyDetail `json:"keys"`
}

// Summary returns the coarse per-status counts after running a recovery
// sweep.
func (p *Pool) Summary() Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recoverLocked()
	return p.summaryLocked()
}

func (p *Pool) summaryLocked() Summary {
	s := Summary{Total: len(p.keys)}
	for _, k := range p.keys {
		switch k.Status {
		case StatusActive:
			s.Active++
		case StatusCooling:
			s.Cooling++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

// Detailed returns the full admin view: summary, aggregate performance, and
// one redacted row per key.
func (p *Pool) Detailed() Detailed {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recoverLocked()

	summary := p.summaryLocked()

	var totalReq, totalSuccess int
	for _, k := range p.keys {
		totalReq += k.TotalRequests
		totalSuccess += k.SuccessfulRequests
	}
	perf := Performance{
		TotalRequests:      totalReq,
		SuccessfulRequests: totalSuccess,
	}
	if totalReq > 0 {
		perf.SuccessRate = float64(totalSuccess) / float64(totalReq)
	}
	if len(p.keys) > 0 {
		perf.AverageRequestsPerKey = float64(totalReq) / float64(len(p.keys))
	}

	now := time.Now()
	keys := make([]KeyDetail, 0, len(p.order))
	for _, id := range p.order {
		k := p.keys[id]
		detail := KeyDetail{
			KeyID:              redact(k.Key),
			Status:             k.Status,
			FailureCount:       k.FailureCount,
			TotalRequests:      k.TotalRequests,
			SuccessfulRequests: k.SuccessfulRequests,
		}
		if k.TotalRequests > 0 {
			detail.SuccessRate = float64(k.SuccessfulRequests) / float64(k.TotalRequests)
		}
		if !k.CoolingUntil.IsZero() {
			ts := k.CoolingUntil.Unix()
			detail.CoolingUntil = &ts
			if remaining := k.CoolingUntil.Sub(now).Seconds(); remaining > 0 {
				detail.CoolingRemaining = remaining
			}
		}
		if !k.LastUsed.IsZero() {
			ts := k.LastUsed.Unix()
			detail.LastUsed = &ts
		}
		keys = append(keys, detail)
	}

	return Detailed{Summary: summary, Performance: perf, Keys: keys}
}

// Add registers a new key in ACTIVE status. It returns false if the key is
// already known.
func (p *Pool) Add(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.keys[key]; exists {
		return false
	}
	p.addLocked(key)
	p.logger.Info("credential pool key added", "key_id", redact(key))
	return true
}

func (p *Pool) addLocked(key string) {
	p.keys[key] = &KeyRecord{Key: key, Status: StatusActive}
	p.order = append(p.order, key)
}

// Remove deletes a key from the pool by exact value. It returns false if
// the key is unknown.
func (p *Pool) Remove(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.keys[key]; !exists {
		return false
	}
	delete(p.keys, key)
	for i, id := range p.order {
		if id == key {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	p.logger.Info("credential pool key removed", "key_id", redact(key))
	return true
}

// SetStatus force-sets a key's status by admin request. Setting ACTIVE also
// clears cooling/failure accounting, matching update_key_status. It returns
// false if the key is unknown.
func (p *Pool) SetStatus(key string, status Status) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	k, ok := p.keys[key]
	if !ok {
		return false
	}
	k.Status = status
	if status == StatusActive {
		k.CoolingUntil = time.Time{}
		k.FailureCount = 0
	}
	p.logger.Info("credential pool key status set by admin", "key_id", redact(key), "status", status)
	return true
}

// ResolvePrefix finds the single full key whose redacted form or literal
// value matches prefix, for admin endpoints that accept a truncated key_id
// instead of the full secret. It returns an error if zero or more than one
// key matches.
func (p *Pool) ResolvePrefix(prefix string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var matches []string
	for _, id := range p.order {
		if id == prefix || redact(id) == prefix || strings.HasPrefix(id, prefix) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("pool: no key matches %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("pool: %q is ambiguous, matches %d keys", prefix, len(matches))
	}
}
