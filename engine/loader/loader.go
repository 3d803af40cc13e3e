package loader

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-frames/common"
)

// AssetKind identifies what a Request decodes into.
type AssetKind int

const (
	// AssetTexture decodes an image file into a common.PixelBuffer.
	AssetTexture AssetKind = iota
	// AssetMesh decodes a mesh description into MeshData.
	AssetMesh
)

// MeshData is a decoded mesh description: flat vertex components and 16-bit indices.
type MeshData struct {
	Vertices []float32
	Indices  []uint16
}

// Request names one asset for LoadAll.
type Request struct {
	Kind AssetKind
	Path string
}

// TextureRequest returns a Request for an image file.
func TextureRequest(path string) Request {
	return Request{Kind: AssetTexture, Path: path}
}

// MeshRequest returns a Request for a mesh description file.
func MeshRequest(path string) Request {
	return Request{Kind: AssetMesh, Path: path}
}

// Assets holds the results of LoadAll keyed by path.
type Assets struct {
	Textures map[string]common.PixelBuffer
	Meshes   map[string]MeshData
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	workers  int
	readFile func(path string) ([]byte, error)

	textureCache map[string]common.PixelBuffer
	meshCache    map[string]MeshData

	pool   worker.DynamicWorkerPool
	closed bool
}

// ErrClosed is returned by LoadAll after Close.
var ErrClosed = errors.New("loader: closed")

// Loader reads and decodes startup assets and caches the results by path.
type Loader interface {
	// LoadTexture reads and decodes an image file. Cached results are returned without reading again.
	//
	// Parameters:
	//   - path: the image file path
	//
	// Returns:
	//   - common.PixelBuffer: the RGBA pixels
	//   - error: a read error or a *DecodeError
	LoadTexture(path string) (common.PixelBuffer, error)

	// LoadMesh reads and parses a mesh description. The format comes from the file extension.
	//
	// Parameters:
	//   - path: the .edn, .yaml or .yml file path
	//
	// Returns:
	//   - MeshData: the vertices and indices
	//   - error: a read error, an unknown extension or a *ParseError
	LoadMesh(path string) (MeshData, error)

	// LoadAll decodes every request in parallel on the loader's worker pool. If any request
	// fails, no assets are returned and the error joins every failure.
	//
	// Parameters:
	//   - requests: the assets to load
	//
	// Returns:
	//   - Assets: every requested asset keyed by path
	//   - error: the joined failures
	LoadAll(requests ...Request) (Assets, error)

	// Close stops the worker pool. Cached assets stay readable through LoadTexture and LoadMesh,
	// LoadAll returns ErrClosed. Calling Close more than once is a no-op.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a Loader reading from the OS file system with one worker per request up to 4.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: the loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		workers:      4,
		readFile:     os.ReadFile,
		textureCache: make(map[string]common.PixelBuffer),
		meshCache:    make(map[string]MeshData),
	}
	for _, option := range options {
		option(l)
	}
	l.workers = max(l.workers, 1)

	// Pool workers run until Close.
	l.pool = worker.NewDynamicWorkerPool(l.workers, 64, 1*time.Second)
	return l
}

func (l *loader) LoadTexture(path string) (common.PixelBuffer, error) {
	l.mu.RLock()
	if cached, ok := l.textureCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	data, err := l.readFile(path)
	if err != nil {
		return common.PixelBuffer{}, fmt.Errorf("loader: read %s: %w", path, err)
	}
	pixels, err := DecodeImage(data)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Source = path
		}
		return common.PixelBuffer{}, err
	}

	l.mu.Lock()
	l.textureCache[path] = pixels
	l.mu.Unlock()
	common.Logger().Debug("texture loaded", "path", path, "width", pixels.Width, "height", pixels.Height)
	return pixels, nil
}

func (l *loader) LoadMesh(path string) (MeshData, error) {
	l.mu.RLock()
	if cached, ok := l.meshCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	format, err := MeshFormatFromPath(path)
	if err != nil {
		return MeshData{}, err
	}
	data, err := l.readFile(path)
	if err != nil {
		return MeshData{}, fmt.Errorf("loader: read %s: %w", path, err)
	}
	vertices, indices, err := DecodeMesh(data, format)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = path
		}
		return MeshData{}, err
	}

	mesh := MeshData{Vertices: vertices, Indices: indices}
	l.mu.Lock()
	l.meshCache[path] = mesh
	l.mu.Unlock()
	common.Logger().Debug("mesh loaded", "path", path, "components", len(vertices), "indices", len(indices))
	return mesh, nil
}

func (l *loader) LoadAll(requests ...Request) (Assets, error) {
	l.mu.RLock()
	closed := l.closed
	l.mu.RUnlock()
	if closed {
		return Assets{}, ErrClosed
	}

	assets := Assets{
		Textures: make(map[string]common.PixelBuffer),
		Meshes:   make(map[string]MeshData),
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs = make([]error, len(requests))
	)
	// Failures are collected per request; tasks always report success to the pool.
	for i, req := range requests {
		wg.Add(1)
		l.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				switch req.Kind {
				case AssetTexture:
					pixels, err := l.LoadTexture(req.Path)
					if err != nil {
						errs[i] = err
						return nil, nil
					}
					mu.Lock()
					assets.Textures[req.Path] = pixels
					mu.Unlock()
				case AssetMesh:
					mesh, err := l.LoadMesh(req.Path)
					if err != nil {
						errs[i] = err
						return nil, nil
					}
					mu.Lock()
					assets.Meshes[req.Path] = mesh
					mu.Unlock()
				default:
					errs[i] = fmt.Errorf("loader: %s: unknown asset kind %d", req.Path, req.Kind)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return Assets{}, err
	}
	common.Logger().Info("assets loaded", "textures", len(assets.Textures), "meshes", len(assets.Meshes))
	return assets, nil
}

func (l *loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.pool.Stop()
}
