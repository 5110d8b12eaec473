// Package server runs a single matchcore engine behind a TCP
// listener, serializing every inbound request through one
// session-handler goroutine (spec §5: "the embedder must serialize
// calls through a single owner"). Ported from the teacher's
// internal/worker.go and internal/net/server.go, merged into one
// coherent implementation (the teacher had drifted into three
// partial, mutually-incompatible copies of this server across
// internal/server.go, internal/net/server.go and internal/server/
// server.go — see DESIGN.md).
package server

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

// WorkerFunction is one unit of work a pool worker executes.
type WorkerFunction func(t *tomb.Tomb, task any) error

// WorkerPool runs a fixed number of goroutines, supervised by a
// tomb.Tomb, each pulling tasks off a shared channel.
type WorkerPool struct {
	n     int
	tasks chan any
}

func NewWorkerPool(size int) WorkerPool {
	return WorkerPool{tasks: make(chan any, taskChanSize), n: size}
}

// AddTask enqueues a unit of work for the pool.
func (p *WorkerPool) AddTask(task any) { p.tasks <- task }

// Setup spawns p.n supervised workers under t, once. Workers run until
// t starts dying; a worker that exits is not replaced.
func (p *WorkerPool) Setup(t *tomb.Tomb, work WorkerFunction) {
	log.Info().Int("workers", p.n).Msg("starting worker pool")
	for i := 0; i < p.n; i++ {
		t.Go(func() error { return p.runWorker(t, work) })
	}
}

func (p *WorkerPool) runWorker(t *tomb.Tomb, work WorkerFunction) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-p.tasks:
			if err := work(t, task); err != nil {
				log.Error().Err(err).Msg("worker exiting on error")
				return err
			}
		}
	}
}
