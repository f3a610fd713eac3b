package config

import "math/rand"

// RotateKey picks a key from the rotation pool uniformly at random. Random
// choice rather than round-robin is intentional: retries bound cost, not key
// coverage. Returns "" when no keys are configured.
func (c *Config) RotateKey() string {
	if len(c.API.Keys) == 0 {
		return ""
	}
	return c.API.Keys[rand.Intn(len(c.API.Keys))]
}

// MaxRetries returns the completion retry budget: one attempt per configured
// key, minimum 1.
func (c *Config) MaxRetries() int {
	if n := len(c.API.Keys); n > 0 {
		return n
	}
	return 1
}
