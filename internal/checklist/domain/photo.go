package checklist

import "encoding/json"

// PhotoReference is a value in exactly one of three states: empty, a
// local-pending base64 payload, or a remote durable URL. The constructors
// are the only way to build one, so a reference can never hold both a
// local payload and a remote URL.
type PhotoReference struct {
	local  string
	remote string
}

// EmptyPhoto returns the empty reference.
func EmptyPhoto() PhotoReference { return PhotoReference{} }

// LocalPhoto builds a local-pending reference from an encoded payload.
func LocalPhoto(encoded string) PhotoReference {
	if encoded == "" {
		return PhotoReference{}
	}
	return PhotoReference{local: encoded}
}

// RemotePhoto builds a remote-durable reference from a storage URL.
func RemotePhoto(url string) PhotoReference {
	if url == "" {
		return PhotoReference{}
	}
	return PhotoReference{remote: url}
}

// IsEmpty reports whether no photo is held.
func (p PhotoReference) IsEmpty() bool { return p.local == "" && p.remote == "" }

// IsLocal reports whether the reference holds a not-yet-durable payload.
func (p PhotoReference) IsLocal() bool { return p.local != "" }

// Uploaded reports whether the reference is remote durable.
func (p PhotoReference) Uploaded() bool { return p.remote != "" }

// Local returns the encoded local payload, empty unless IsLocal.
func (p PhotoReference) Local() string { return p.local }

// Remote returns the durable storage URL, empty unless Uploaded.
func (p PhotoReference) Remote() string { return p.remote }

// photoJSON is the wire form of a PhotoReference.
type photoJSON struct {
	Local  string `json:"local,omitempty"`
	Remote string `json:"remote,omitempty"`
}

// MarshalJSON encodes the reference preserving its single-state shape.
func (p PhotoReference) MarshalJSON() ([]byte, error) {
	if p.IsEmpty() {
		return []byte("null"), nil
	}
	return json.Marshal(photoJSON{Local: p.local, Remote: p.remote})
}

// UnmarshalJSON decodes a reference; a remote URL wins if both are present.
func (p *PhotoReference) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = PhotoReference{}
		return nil
	}
	var wire photoJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Remote != "" {
		*p = RemotePhoto(wire.Remote)
		return nil
	}
	*p = LocalPhoto(wire.Local)
	return nil
}
