package core

// Operation codes found in the first 32 bits of message bodies.
const (
	OpComment                    uint32 = 0x0
	OpSimpleTransfer             uint32 = 0xd53276db
	OpCollectionMint             uint32 = 1
	OpCollectionMintBatch        uint32 = 2
	OpCollectionChangeContent    uint32 = 4
	OpJettonMinterMint           uint32 = 21
	OpJettonTransfer             uint32 = 0x0f8a7ea5
	OpJettonInternalTransfer     uint32 = 0x178d4519
	OpJettonTransferNotification uint32 = 0x7362d09c
	OpJettonBurn                 uint32 = 0x595f07bc
	OpNftTransfer                uint32 = 0x5fcc3d14
	OpNftOwnershipAssigned       uint32 = 0x05138d91
)

// IsMintOp reports codes of the mint family, they always mean a contract invocation.
func IsMintOp(op uint32) bool {
	switch op {
	case OpCollectionMint, OpCollectionMintBatch, OpJettonMinterMint:
		return true
	}
	return false
}
