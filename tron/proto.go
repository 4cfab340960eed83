package tron

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the protocol.Transaction messages in Tron's
// core/Tron.proto and core/contract/*.proto.
const (
	fieldRawRefBlockBytes = 1
	fieldRawRefBlockHash  = 4
	fieldRawExpiration    = 8
	fieldRawContract      = 11
	fieldRawTimestamp     = 14
	fieldRawFeeLimit      = 18

	fieldContractType      = 1
	fieldContractParameter = 2

	fieldAnyTypeURL = 1
	fieldAnyValue   = 2

	fieldTxRawData   = 1
	fieldTxSignature = 2

	fieldTransferOwner  = 1
	fieldTransferTo     = 2
	fieldTransferAmount = 3

	fieldTriggerOwner     = 1
	fieldTriggerContract  = 2
	fieldTriggerCallValue = 3
	fieldTriggerData      = 4
)

// ContractType is protocol.Transaction.Contract.ContractType.
type ContractType int32

const (
	TransferContractType     ContractType = 1
	TriggerSmartContractType ContractType = 31
)

const (
	typeURLTransferContract     = "type.googleapis.com/protocol.TransferContract"
	typeURLTriggerSmartContract = "type.googleapis.com/protocol.TriggerSmartContract"
)

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

// transferContract encodes protocol.TransferContract.
func transferContract(owner, to []byte, amount int64) []byte {
	var b []byte
	b = appendBytes(b, fieldTransferOwner, owner)
	b = appendBytes(b, fieldTransferTo, to)
	b = appendInt64(b, fieldTransferAmount, amount)
	return b
}

// triggerSmartContract encodes protocol.TriggerSmartContract.
func triggerSmartContract(owner, contract []byte, callValue int64, data []byte) []byte {
	var b []byte
	b = appendBytes(b, fieldTriggerOwner, owner)
	b = appendBytes(b, fieldTriggerContract, contract)
	b = appendInt64(b, fieldTriggerCallValue, callValue)
	b = appendBytes(b, fieldTriggerData, data)
	return b
}

// contract encodes protocol.Transaction.Contract wrapping value in an Any.
func contract(typ ContractType, typeURL string, value []byte) []byte {
	var param []byte
	param = appendString(param, fieldAnyTypeURL, typeURL)
	param = appendBytes(param, fieldAnyValue, value)

	var b []byte
	b = appendInt64(b, fieldContractType, int64(typ))
	b = appendBytes(b, fieldContractParameter, param)
	return b
}

// rawData holds protocol.Transaction.raw fields.
type rawData struct {
	RefBlockBytes []byte
	RefBlockHash  []byte
	Expiration    int64
	Contract      []byte
	Timestamp     int64
	FeeLimit      int64
}

func (r *rawData) marshal() []byte {
	var b []byte
	b = appendBytes(b, fieldRawRefBlockBytes, r.RefBlockBytes)
	b = appendBytes(b, fieldRawRefBlockHash, r.RefBlockHash)
	b = appendInt64(b, fieldRawExpiration, r.Expiration)
	b = appendBytes(b, fieldRawContract, r.Contract)
	b = appendInt64(b, fieldRawTimestamp, r.Timestamp)
	b = appendInt64(b, fieldRawFeeLimit, r.FeeLimit)
	return b
}

// transaction encodes protocol.Transaction.
func transaction(raw []byte, signatures ...[]byte) []byte {
	var b []byte
	b = appendBytes(b, fieldTxRawData, raw)
	for _, sig := range signatures {
		b = appendBytes(b, fieldTxSignature, sig)
	}
	return b
}
