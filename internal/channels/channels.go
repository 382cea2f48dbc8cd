package channels

import (
	"sync"

	"github.com/AbdulWasayUl/go-athan-clock/models"
)

type Channels struct {
	DataRequest chan models.DataRequest
	WG          *sync.WaitGroup
}

func New() *Channels {
	const bufferSize = 100
	return &Channels{
		DataRequest: make(chan models.DataRequest, bufferSize),
		WG:          &sync.WaitGroup{},
	}
}

// Submit queues req and counts it as pending until a worker finishes it.
func (c *Channels) Submit(req models.DataRequest) {
	c.WG.Add(1)
	c.DataRequest <- req
}
