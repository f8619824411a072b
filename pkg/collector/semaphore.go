package collector

// Semaphore bounds concurrent work within a single scan (default 10 for the
// infra probe).
type Semaphore struct {
	slots chan struct{}
}

func NewSemaphore(max int) *Semaphore {
	if max <= 0 {
		max = 10
	}
	return &Semaphore{slots: make(chan struct{}, max)}
}

func (s *Semaphore) Acquire() { s.slots <- struct{}{} }
func (s *Semaphore) Release() { <-s.slots }
