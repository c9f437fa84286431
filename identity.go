package brepio

import (
	"reflect"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// referenceNamespace roots every stable reference.
var referenceNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/gogpu/brepio/face"))

// Identity assigns stable references to faces.
//
// A reference is a name-based (version 5) UUID derived from a shape
// namespace and a face key:
//   - the shape namespace is the shape's StableKey when it implements
//     [Keyed], otherwise a slot number assigned the first time the shape
//     instance is seen by this Identity;
//   - the face key is the face's StableKey when it implements [Keyed],
//     otherwise its traversal ordinal, followed by its orientation.
//
// Ordinals are reproducible because meshing is requested non-parallel and
// traversal order is fixed by the kernel. References never depend on memory
// addresses, so they survive re-meshing of an unchanged shape.
//
// Identity is safe for concurrent use.
type Identity struct {
	mu    sync.Mutex
	slots map[Shape]uint64
	next  uint64
}

// NewIdentity creates an empty identity registry.
func NewIdentity() *Identity {
	return &Identity{slots: make(map[Shape]uint64)}
}

// Reference returns the stable reference of face h within shape.
func (id *Identity) Reference(shape Shape, h FaceHandle) string {
	ns := id.namespace(shape)
	return uuid.NewSHA1(ns, []byte(faceKey(h))).String()
}

// OrdinalReference returns the reference of h qualified by its traversal
// ordinal. Session.Run uses it for a face whose key repeats the key of an
// earlier face of the same shape.
func (id *Identity) OrdinalReference(shape Shape, h FaceHandle) string {
	ns := id.namespace(shape)
	return uuid.NewSHA1(ns, []byte(faceKey(h)+"#"+strconv.Itoa(h.Ordinal))).String()
}

// Forget drops the slot of an unkeyed shape so the registry does not keep
// it alive. A forgotten shape gets a new slot, and new references, when
// seen again.
func (id *Identity) Forget(shape Shape) {
	if !slotted(shape) {
		return
	}
	id.mu.Lock()
	delete(id.slots, shape)
	id.mu.Unlock()
}

// Len returns the number of shapes holding a slot.
func (id *Identity) Len() int {
	id.mu.Lock()
	defer id.mu.Unlock()
	return len(id.slots)
}

func (id *Identity) namespace(shape Shape) uuid.UUID {
	if k, ok := shape.(Keyed); ok {
		return uuid.NewSHA1(referenceNamespace, []byte("key:"+k.StableKey()))
	}
	if !slotted(shape) {
		return uuid.NewSHA1(referenceNamespace, []byte("unkeyed"))
	}

	id.mu.Lock()
	if id.slots == nil {
		id.slots = make(map[Shape]uint64)
	}
	slot, ok := id.slots[shape]
	if !ok {
		id.next++
		slot = id.next
		id.slots[shape] = slot
	}
	id.mu.Unlock()

	return uuid.NewSHA1(referenceNamespace, []byte("slot:"+strconv.FormatUint(slot, 10)))
}

// slotted reports whether shape can be used as a map key.
func slotted(shape Shape) bool {
	if shape == nil {
		return false
	}
	return reflect.TypeOf(shape).Comparable()
}

func faceKey(h FaceHandle) string {
	var key string
	if k, ok := h.Face.(Keyed); ok {
		key = "key:" + k.StableKey()
	} else {
		key = "ordinal:" + strconv.Itoa(h.Ordinal)
	}
	return key + "/" + h.Orientation.String()
}
