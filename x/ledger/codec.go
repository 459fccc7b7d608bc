package ledger

import (
	"github.com/gogo/protobuf/proto"
)

// transactionRecord is the wire representation of Transaction, see
// codec.proto.
type transactionRecord struct {
	Submitter     []byte   `protobuf:"bytes,2,opt,name=submitter,proto3" json:"submitter,omitempty"`
	Target        []byte   `protobuf:"bytes,3,opt,name=target,proto3" json:"target,omitempty"`
	Value         uint64   `protobuf:"varint,4,opt,name=value,proto3" json:"value,omitempty"`
	Data          []byte   `protobuf:"bytes,5,opt,name=data,proto3" json:"data,omitempty"`
	Executed      bool     `protobuf:"varint,6,opt,name=executed,proto3" json:"executed,omitempty"`
	Confirmations [][]byte `protobuf:"bytes,7,rep,name=confirmations,proto3" json:"confirmations,omitempty"`
}

var _ proto.Message = (*transactionRecord)(nil)

func (m *transactionRecord) Reset()         { *m = transactionRecord{} }
func (m *transactionRecord) String() string { return proto.CompactTextString(m) }
func (*transactionRecord) ProtoMessage()    {}
