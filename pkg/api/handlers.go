package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/txsociety/tonkit/pkg/cell"
	"github.com/txsociety/tonkit/pkg/core"
	"github.com/txsociety/tonkit/pkg/payload"
	"github.com/txsociety/tonkit/pkg/wallet"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"
	"time"
)

type Handler struct {
	node         node
	contracts    contracts
	transactions transactions
	wallet       sender
}

// NewHandler creates the API handler. Transfers are disabled when w is nil.
func NewHandler(node node, contracts contracts, transactions transactions, w sender) *Handler {
	return &Handler{
		node:         node,
		contracts:    contracts,
		transactions: transactions,
		wallet:       w,
	}
}

// NewTransfer is a single outgoing message. With Nft set the destination is the item,
// with Jetton set the destination is resolved to the wallet's own jetton wallet.
// The comment becomes the forward payload of nft and jetton transfers.
type NewTransfer struct {
	Destination string          `json:"destination"`
	Amount      string          `json:"amount"`
	Bounceable  *bool           `json:"bounceable,omitempty"`
	Comment     string          `json:"comment,omitempty"`
	Mode        uint8           `json:"mode,omitempty"`
	Nft         *NftTransfer    `json:"nft,omitempty"`
	Jetton      *JettonTransfer `json:"jetton,omitempty"`
}

type NftTransfer struct {
	NewOwner      string `json:"new_owner"`
	ForwardAmount string `json:"forward_amount,omitempty"`
}

type JettonTransfer struct {
	Master        string `json:"master"`
	Recipient     string `json:"recipient"`
	Amount        string `json:"amount"`
	ForwardAmount string `json:"forward_amount,omitempty"`
}

type NewTransfers struct {
	Messages []NewTransfer `json:"messages"`
	LifeTime int64         `json:"life_time,omitempty"`
}

type TransferResult struct {
	Hash     string `json:"hash"`
	Wallet   string `json:"wallet"`
	Deployed bool   `json:"deploy"`
}

type WalletAddress struct {
	Address     string `json:"address"`
	Raw         string `json:"raw"`
	Version     string `json:"version"`
	SubWalletID uint32 `json:"subwallet_id"`
}

// statusOf maps the error taxonomy to http statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidResponseShape), errors.Is(err, core.ErrTransport), errors.Is(err, cell.ErrCodec):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("json encode", "error", err)
	}
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := core.ParseAddress(r.PathValue("address"))
	if err != nil {
		writeHttpError(w, http.StatusBadRequest, "invalid address: "+err.Error())
		return
	}
	state, err := h.node.GetAccountState(r.Context(), addr, nil)
	if err != nil {
		writeHttpError(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, state)
}

func (h *Handler) getBlockTransactions(w http.ResponseWriter, r *http.Request) {
	workchain, err := strconv.ParseInt(r.PathValue("workchain"), 10, 32)
	if err != nil {
		writeHttpError(w, http.StatusBadRequest, "invalid workchain")
		return
	}
	seqno, err := strconv.ParseUint(r.PathValue("seqno"), 10, 32)
	if err != nil {
		writeHttpError(w, http.StatusBadRequest, "invalid seqno")
		return
	}
	records, err := h.transactions.LoadBlockTransactions(r.Context(), int32(workchain), uint32(seqno))
	if err != nil {
		writeHttpError(w, statusOf(err), err.Error())
		return
	}
	res := struct {
		Transactions []core.TxRecord `json:"transactions"`
	}{
		Transactions: records,
	}
	if res.Transactions == nil {
		res.Transactions = make([]core.TxRecord, 0)
	}
	writeJSON(w, res)
}

func (h *Handler) getNft(w http.ResponseWriter, r *http.Request) {
	addr, err := core.ParseAddress(r.PathValue("address"))
	if err != nil {
		writeHttpError(w, http.StatusBadRequest, "invalid address: "+err.Error())
		return
	}
	item, err := h.contracts.GetNftItem(r.Context(), addr, nil)
	if err != nil {
		writeHttpError(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, item)
}

func (h *Handler) getCollection(w http.ResponseWriter, r *http.Request) {
	addr, err := core.ParseAddress(r.PathValue("address"))
	if err != nil {
		writeHttpError(w, http.StatusBadRequest, "invalid address: "+err.Error())
		return
	}
	data, err := h.contracts.GetCollectionData(r.Context(), addr, nil)
	if err != nil {
		writeHttpError(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, data)
}

func (h *Handler) getCollectionItem(w http.ResponseWriter, r *http.Request) {
	addr, err := core.ParseAddress(r.PathValue("address"))
	if err != nil {
		writeHttpError(w, http.StatusBadRequest, "invalid address: "+err.Error())
		return
	}
	index, ok := new(big.Int).SetString(r.PathValue("index"), 10)
	if !ok || index.Sign() < 0 {
		writeHttpError(w, http.StatusBadRequest, "invalid index")
		return
	}
	itemAddress, err := h.contracts.GetNftAddressByIndex(r.Context(), addr, index, nil)
	if err != nil {
		writeHttpError(w, statusOf(err), err.Error())
		return
	}
	item, err := h.contracts.GetNftItem(r.Context(), itemAddress, nil)
	if err != nil {
		writeHttpError(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, item)
}

func (h *Handler) getJettonWallet(w http.ResponseWriter, r *http.Request) {
	master, err := core.ParseAddress(r.PathValue("master"))
	if err != nil {
		writeHttpError(w, http.StatusBadRequest, "invalid jetton master: "+err.Error())
		return
	}
	owner, err := core.ParseAddress(r.PathValue("owner"))
	if err != nil {
		writeHttpError(w, http.StatusBadRequest, "invalid owner: "+err.Error())
		return
	}
	addr, err := h.node.GetJettonWallet(r.Context(), master, owner)
	if err != nil {
		writeHttpError(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, struct {
		Address string `json:"address"`
		Raw     string `json:"raw"`
	}{
		Address: addr.ToHuman(true, false),
		Raw:     addr.ToRaw(),
	})
}

func (h *Handler) getWalletAddress(w http.ResponseWriter, r *http.Request) {
	pubkey, err := hex.DecodeString(r.PathValue("public_key"))
	if err != nil || len(pubkey) != 32 {
		writeHttpError(w, http.StatusBadRequest, "invalid public key")
		return
	}
	query := r.URL.Query()
	version := wallet.V4R2
	if v := query.Get("version"); len(v) > 0 {
		version, err = wallet.ParseVariant(v)
		if err != nil {
			writeHttpError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	var workchain int64
	if wc := query.Get("workchain"); len(wc) > 0 {
		workchain, err = strconv.ParseInt(wc, 10, 32)
		if err != nil {
			writeHttpError(w, http.StatusBadRequest, "invalid workchain")
			return
		}
	}
	subWalletID := wallet.DefaultSubWalletID(int32(workchain))
	if id := query.Get("subwallet_id"); len(id) > 0 {
		parsed, err := strconv.ParseUint(id, 10, 32)
		if err != nil {
			writeHttpError(w, http.StatusBadRequest, "invalid subwallet id")
			return
		}
		subWalletID = uint32(parsed)
	}
	addr, err := version.Address(pubkey, int32(workchain), subWalletID)
	if err != nil {
		writeHttpError(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, WalletAddress{
		Address:     addr.ToHuman(false, false),
		Raw:         addr.ToRaw(),
		Version:     version.String(),
		SubWalletID: subWalletID,
	})
}

func (h *Handler) createTransfer(w http.ResponseWriter, r *http.Request) {
	if h.wallet == nil {
		writeHttpError(w, http.StatusLocked, "wallet is not configured")
		return
	}
	if r.Body == nil {
		writeHttpError(w, http.StatusBadRequest, "empty body")
		return
	}
	var data NewTransfers
	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		writeHttpError(w, http.StatusBadRequest, "invalid transfer data: "+err.Error())
		return
	}
	transfers, err := h.convertNewTransfers(r.Context(), data)
	if err != nil {
		writeHttpError(w, statusOf(err), "transfer data parsing error: "+err.Error())
		return
	}
	var opts []wallet.Option
	if data.LifeTime > 0 {
		opts = append(opts, wallet.WithTTL(time.Duration(data.LifeTime)*time.Second))
	}
	t, err := h.wallet.Transfer(r.Context(), transfers, opts...)
	if err != nil {
		writeHttpError(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, TransferResult{
		Hash:     hex.EncodeToString(t.Hash[:]),
		Wallet:   t.Address.ToHuman(true, false),
		Deployed: t.StateInit != nil,
	})
}

func (h *Handler) convertNewTransfers(ctx context.Context, data NewTransfers) ([]core.WalletTransfer, error) {
	if len(data.Messages) == 0 {
		return nil, fmt.Errorf("%w: no messages", core.ErrValidation)
	}
	res := make([]core.WalletTransfer, 0, len(data.Messages))
	for i, m := range data.Messages {
		t, err := h.convertNewTransfer(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		res = append(res, t)
	}
	return res, nil
}

func (h *Handler) convertNewTransfer(ctx context.Context, m NewTransfer) (core.WalletTransfer, error) {
	if m.Nft != nil && m.Jetton != nil {
		return core.WalletTransfer{}, fmt.Errorf("%w: nft and jetton are mutually exclusive", core.ErrValidation)
	}
	amount, err := parseAmount(m.Amount)
	if err != nil {
		return core.WalletTransfer{}, err
	}
	t := core.WalletTransfer{
		Amount: amount,
		Mode:   core.SendMode(m.Mode),
	}
	var forward *cell.Cell
	if len(m.Comment) > 0 {
		forward, err = payload.Comment(m.Comment)
		if err != nil {
			return core.WalletTransfer{}, err
		}
	}
	own := h.wallet.Address()
	queryID := uint64(time.Now().UnixMilli())
	flags := core.AddressFlags{Bounceable: true}
	switch {
	case m.Jetton != nil:
		master, err := core.ParseAddress(m.Jetton.Master)
		if err != nil {
			return core.WalletTransfer{}, err
		}
		recipient, err := core.ParseAddress(m.Jetton.Recipient)
		if err != nil {
			return core.WalletTransfer{}, err
		}
		jettons, ok := new(big.Int).SetString(m.Jetton.Amount, 10)
		if !ok || jettons.Sign() <= 0 {
			return core.WalletTransfer{}, fmt.Errorf("%w: invalid jetton amount", core.ErrValidation)
		}
		forwardAmount, err := parseOptionalAmount(m.Jetton.ForwardAmount)
		if err != nil {
			return core.WalletTransfer{}, err
		}
		t.Destination, err = h.node.GetJettonWallet(ctx, master, own)
		if err != nil {
			return core.WalletTransfer{}, err
		}
		t.Body, err = payload.JettonTransfer(queryID, jettons, recipient, &own, forwardAmount, forward)
		if err != nil {
			return core.WalletTransfer{}, err
		}
	case m.Nft != nil:
		t.Destination, err = core.ParseAddress(m.Destination)
		if err != nil {
			return core.WalletTransfer{}, err
		}
		newOwner, err := core.ParseAddress(m.Nft.NewOwner)
		if err != nil {
			return core.WalletTransfer{}, err
		}
		forwardAmount, err := parseOptionalAmount(m.Nft.ForwardAmount)
		if err != nil {
			return core.WalletTransfer{}, err
		}
		t.Body, err = payload.NftTransfer(queryID, newOwner, &own, forwardAmount, forward)
		if err != nil {
			return core.WalletTransfer{}, err
		}
	default:
		t.Destination, flags, err = core.ParseAddressWithFlags(m.Destination)
		if err != nil {
			return core.WalletTransfer{}, err
		}
		t.Body = forward
	}
	t.Bounceable = flags.Bounceable
	if m.Bounceable != nil {
		t.Bounceable = *m.Bounceable
	}
	return t, nil
}

func parseAmount(s string) (uint64, error) {
	amount, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: can not parse amount string", core.ErrValidation)
	}
	return amount, nil
}

func parseOptionalAmount(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return parseAmount(s)
}

func RegisterHandlers(mux *http.ServeMux, h *Handler, token string) {
	mux.HandleFunc("/v1/accounts/{address}", recoverMiddleware(authMiddleware(get(h.getAccount), token)))
	mux.HandleFunc("/v1/blocks/{workchain}/{seqno}/transactions", recoverMiddleware(authMiddleware(get(h.getBlockTransactions), token)))
	mux.HandleFunc("/v1/nfts/{address}", recoverMiddleware(authMiddleware(get(h.getNft), token)))
	mux.HandleFunc("/v1/collections/{address}", recoverMiddleware(authMiddleware(get(h.getCollection), token)))
	mux.HandleFunc("/v1/collections/{address}/items/{index}", recoverMiddleware(authMiddleware(get(h.getCollectionItem), token)))
	mux.HandleFunc("/v1/jettons/{master}/wallets/{owner}", recoverMiddleware(authMiddleware(get(h.getJettonWallet), token)))
	mux.HandleFunc("/v1/wallets/{public_key}/address", recoverMiddleware(get(h.getWalletAddress))) // public endpoint
	mux.HandleFunc("/v1/transfers", recoverMiddleware(authMiddleware(post(h.createTransfer), token)))
}
