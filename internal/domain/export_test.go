package domain

// FillWaiters reports how many callers wait on the shared fill for key.
func FillWaiters(s *ImageService, key string) int {
	return s.fills.waiting(key)
}
