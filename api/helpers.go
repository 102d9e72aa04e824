package api

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/vocdoni/ballotbox/crypto/ethereum"
	"github.com/vocdoni/ballotbox/log"
	"github.com/vocdoni/ballotbox/util"
)

// httpWriteJSON helper function allows to write a JSON response.
func httpWriteJSON(w http.ResponseWriter, data any) {
	jdata, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	n, err := w.Write(jdata)
	if err != nil {
		log.Warnw("failed to write http response", "error", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
	log.Debugw("api response", "bytes", n, "data", strings.ReplaceAll(string(jdata), "\"", ""))
}

// httpWriteOK helper function allows to write an OK response.
func httpWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// addressParam parses the URL parameter name as an address.
func addressParam(r *http.Request, name string) (common.Address, error) {
	s := chi.URLParam(r, name)
	if !common.IsHexAddress(s) {
		return common.Address{}, ErrMalformedAddress.Withf("%s %q", name, s)
	}
	return common.HexToAddress(s), nil
}

// hexParam parses the URL parameter name as hex bytes, 0x prefix optional.
func hexParam(r *http.Request, name string) ([]byte, error) {
	s := chi.URLParam(r, name)
	b, err := hex.DecodeString(util.TrimHex(s))
	if err != nil || len(b) == 0 {
		return nil, ErrMalformedParam.Withf("%s %q", name, s)
	}
	return b, nil
}

// readSigned reads a SignedRequest from the body and recovers its signer.
func readSigned(r *http.Request) (*SignedRequest, common.Address, error) {
	req := &SignedRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return nil, common.Address{}, ErrMalformedBody.Withf("could not decode request body: %v", err)
	}
	if len(req.Payload) == 0 {
		return nil, common.Address{}, ErrMalformedBody.Withf("empty payload")
	}
	caller, err := ethereum.AddrFromSignature(req.Payload, req.Signature)
	if err != nil {
		return nil, common.Address{}, ErrInvalidSignature.WithErr(err)
	}
	return req, caller, nil
}

// decodeSigned reads a SignedRequest from the body, recovers the signer and
// decodes the payload into out. The signer is the caller of the ledger
// operation.
func decodeSigned(r *http.Request, out any) (common.Address, error) {
	req, caller, err := readSigned(r)
	if err != nil {
		return common.Address{}, err
	}
	if err := json.Unmarshal(req.Payload, out); err != nil {
		return common.Address{}, ErrMalformedBody.Withf("could not decode payload: %v", err)
	}
	return caller, nil
}

// decodeManaged is decodeSigned for management writes: the payload must
// carry a Stamp inside the request window and must not have been accepted
// before.
func (a *API) decodeManaged(r *http.Request, out any) (common.Address, error) {
	req, caller, err := readSigned(r)
	if err != nil {
		return common.Address{}, err
	}
	if err := json.Unmarshal(req.Payload, out); err != nil {
		return common.Address{}, ErrMalformedBody.Withf("could not decode payload: %v", err)
	}
	stamp := &Stamp{}
	if err := json.Unmarshal(req.Payload, stamp); err != nil {
		return common.Address{}, ErrMalformedBody.Withf("could not decode timestamp: %v", err)
	}
	if err := a.replay.accept(req.Payload, stamp.Timestamp); err != nil {
		return common.Address{}, err
	}
	return caller, nil
}

// managedWrite decodes a management request addressed to the entity in URL
// parameter param and applies it.
func (a *API) managedWrite(w http.ResponseWriter, r *http.Request, param string, req any,
	apply func(caller, id common.Address) error,
) {
	id, err := addressParam(r, param)
	if err != nil {
		writeErr(w, err)
		return
	}
	caller, err := a.decodeManaged(r, req)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := apply(caller, id); err != nil {
		log.Debugw("management request rejected", "path", r.URL.Path, "caller", caller.Hex(), "error", err.Error())
		writeErr(w, err)
		return
	}
	httpWriteOK(w)
}

// writeErr writes err as an API error, translating ledger errors.
func writeErr(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(Error); ok {
		apiErr.Write(w)
		return
	}
	ledgerError(err).Write(w)
}

// managedCreate decodes a management request that creates entities and
// writes the ids returned by create.
func (a *API) managedCreate(w http.ResponseWriter, r *http.Request, req any,
	create func(caller common.Address) (*CreatedResponse, error),
) {
	caller, err := a.decodeManaged(r, req)
	if err != nil {
		writeErr(w, err)
		return
	}
	resp, err := create(caller)
	if err != nil {
		log.Debugw("creation rejected", "path", r.URL.Path, "caller", caller.Hex(), "error", err.Error())
		writeErr(w, err)
		return
	}
	log.Infow("entity created", "path", r.URL.Path, "id", resp.ID.Hex(), "caller", caller.Hex())
	httpWriteJSON(w, resp)
}
