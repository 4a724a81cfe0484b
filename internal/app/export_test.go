package service

import "time"

// ExpireSessions runs one sweep as if the clock read now.
func (s *Service) ExpireSessions(now time.Time) int {
	return s.expireSessions(now)
}
