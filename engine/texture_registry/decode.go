package texture_registry

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-grid/common"
	xdraw "golang.org/x/image/draw"
)

// decodeIdleTimeout is how long decode workers linger after the queue drains.
const decodeIdleTimeout = time.Second

func (r *registry) DecodeAll() error {
	r.mu.Lock()
	var pending []*entry
	for _, e := range r.entries {
		if e.staging == nil {
			pending = append(pending, e)
		}
	}
	workers := r.workers
	r.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	pool := worker.NewDynamicWorkerPool(min(workers, len(pending)), len(pending), decodeIdleTimeout)
	results := make([]*common.TextureStagingData, len(pending))
	errs := make([]error, len(pending))

	var wg sync.WaitGroup
	for i, e := range pending {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID:      i,
			Payload: e.texture.Name,
			Do: func() (any, error) {
				defer wg.Done()
				pixels, w, h, err := e.texture.Decode()
				if err != nil {
					errs[i] = err
					return nil, err
				}
				results[i] = &common.TextureStagingData{Pixels: pixels, Width: w, Height: h}
				return results[i], nil
			},
		})
	}
	wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range pending {
		if results[i] != nil {
			e.staging = results[i]
		}
	}
	if r.resize {
		r.resizeLayers()
	}
	return errors.Join(errs...)
}

// resizeLayers scales every decoded texture to the layer size. Without a configured layer size the
// lowest indexed decoded texture sets it. Callers hold mu.
func (r *registry) resizeLayers() {
	w, h := r.layerWidth, r.layerHeight
	if w == 0 || h == 0 {
		for _, e := range r.entries {
			if e.staging != nil {
				w, h = e.staging.Width, e.staging.Height
				break
			}
		}
	}
	for _, e := range r.entries {
		if e.staging == nil || (e.staging.Width == w && e.staging.Height == h) {
			continue
		}
		scaled := scale(*e.staging, w, h)
		e.staging = &scaled
	}
}

// scale resamples RGBA staging data with nearest neighbor filtering.
func scale(src common.TextureStagingData, width, height uint32) common.TextureStagingData {
	from := &image.RGBA{
		Pix:    src.Pixels,
		Stride: 4 * int(src.Width),
		Rect:   image.Rect(0, 0, int(src.Width), int(src.Height)),
	}
	to := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	xdraw.NearestNeighbor.Scale(to, to.Bounds(), from, from.Bounds(), xdraw.Src, nil)
	return common.TextureStagingData{Pixels: to.Pix, Width: width, Height: height}
}
