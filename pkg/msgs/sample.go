// Package msgs defines the wire form of samples sent to remote monitors.
package msgs

import (
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/sampleslot/pkg/sample"
)

// Sample mirrors sample.proto.
type Sample struct {
	X        uint32 `protobuf:"varint,1,opt,name=x,proto3" json:"x,omitempty"`
	Y        uint32 `protobuf:"varint,2,opt,name=y,proto3" json:"y,omitempty"`
	Seq      uint64 `protobuf:"varint,3,opt,name=seq,proto3" json:"seq,omitempty"`
	Session  string `protobuf:"bytes,4,opt,name=session,proto3" json:"session,omitempty"`
	UnixNano int64  `protobuf:"varint,5,opt,name=unix_nano,json=unixNano,proto3" json:"unix_nano,omitempty"`
}

// Reset implements proto.Message.
func (m *Sample) Reset() { *m = Sample{} }

// String implements proto.Message.
func (m *Sample) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*Sample) ProtoMessage() {}

// Value extracts the sample payload.
func (m *Sample) Value() sample.Sample {
	return sample.Sample{X: m.X, Y: m.Y}
}

// Time is the time the sample was reported.
func (m *Sample) Time() time.Time {
	return time.Unix(0, m.UnixNano)
}

// NewSample wraps a consumed sample.
func NewSample(v sample.Sample, seq uint64, session string, at time.Time) *Sample {
	return &Sample{
		X:        v.X,
		Y:        v.Y,
		Seq:      seq,
		Session:  session,
		UnixNano: at.UnixNano(),
	}
}

// Encode encodes the message to bytes.
func (m *Sample) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// DecodeSample decodes bytes into Sample.
func DecodeSample(data []byte) (*Sample, error) {
	var m Sample
	if err := proto.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Meta describes a sample source. It's published retained in JSON.
type Meta struct {
	Node        string `json:"node"`
	Session     string `json:"session"`
	Policy      string `json:"policy,omitempty"`
	Interval    string `json:"interval,omitempty"`
	Description string `json:"description,omitempty"`
}
