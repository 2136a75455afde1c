package service

import "time"

// SetIntn replaces the random offset source.
func (s *AnnotationService) SetIntn(f func(n int) int) { s.intn = f }

// SetNow pins the seeder clock.
func (s *Seeder) SetNow(f func() time.Time) { s.now = f }
