package owners

import (
	"github.com/gogo/protobuf/proto"
)

// configRecord is the wire representation of Config, see codec.proto.
type configRecord struct {
	Owners    [][]byte `protobuf:"bytes,1,rep,name=owners,proto3" json:"owners,omitempty"`
	Threshold uint32   `protobuf:"varint,2,opt,name=threshold,proto3" json:"threshold,omitempty"`
}

var _ proto.Message = (*configRecord)(nil)

func (m *configRecord) Reset()         { *m = configRecord{} }
func (m *configRecord) String() string { return proto.CompactTextString(m) }
func (*configRecord) ProtoMessage()    {}
