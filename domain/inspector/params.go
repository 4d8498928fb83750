package inspector

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"workflowbuilder/domain/core/valueobjects"
)

// Params is the typed view of a node's parameter map. The concrete type is
// chosen by the node type; unknown types decode to GenericParams.
type Params interface {
	isParams()
}

// TokenParams configures a token price trigger
type TokenParams struct {
	TokenSymbol string   `json:"tokenSymbol,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
}

// SwapParams configures a DeFi swap
type SwapParams struct {
	TokenIn  string   `json:"tokenIn,omitempty"`
	TokenOut string   `json:"tokenOut,omitempty"`
	Amount   *float64 `json:"amount,omitempty"`
	Slippage *float64 `json:"slippage,omitempty"`
}

// WalletParams configures a wallet on a network
type WalletParams struct {
	PrivateKey string `json:"privateKey,omitempty"`
	Network    string `json:"network,omitempty"`
}

// ContractParams configures a contract call or watch
type ContractParams struct {
	ContractAddress string          `json:"contractAddress,omitempty"`
	MethodName      string          `json:"methodName,omitempty"`
	Args            json.RawMessage `json:"params,omitempty"`
}

// SocialParams configures a social post
type SocialParams struct {
	Message string `json:"message,omitempty"`
	APIKey  string `json:"apiKey,omitempty"`
}

// APIParams configures an HTTP request
type APIParams struct {
	URL     string            `json:"url,omitempty"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// ScheduleParams configures a time trigger
type ScheduleParams struct {
	Schedule string `json:"schedule,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// GenericParams keeps the raw map for types without a dedicated editor
type GenericParams struct {
	Values map[string]interface{}
}

func (TokenParams) isParams()    {}
func (SwapParams) isParams()     {}
func (WalletParams) isParams()   {}
func (ContractParams) isParams() {}
func (SocialParams) isParams()   {}
func (APIParams) isParams()      {}
func (ScheduleParams) isParams() {}
func (GenericParams) isParams()  {}

// DecodeParams converts a parameter map into its typed form. Values of the
// wrong shape are dropped rather than failing the whole decode.
func DecodeParams(kind valueobjects.NodeKind, values map[string]interface{}) Params {
	switch kind {
	case valueobjects.KindToken:
		return TokenParams{
			TokenSymbol: stringOf(values["tokenSymbol"]),
			Amount:      numberOf(values["amount"]),
		}
	case valueobjects.KindDefi:
		return SwapParams{
			TokenIn:  stringOf(values["tokenIn"]),
			TokenOut: stringOf(values["tokenOut"]),
			Amount:   numberOf(values["amount"]),
			Slippage: numberOf(values["slippage"]),
		}
	case valueobjects.KindWallet:
		return WalletParams{
			PrivateKey: stringOf(values["privateKey"]),
			Network:    stringOf(values["network"]),
		}
	case valueobjects.KindContract:
		p := ContractParams{
			ContractAddress: stringOf(values["contractAddress"]),
			MethodName:      stringOf(values["methodName"]),
		}
		if v, ok := values["params"]; ok && v != nil {
			if raw, err := json.Marshal(v); err == nil {
				p.Args = raw
			}
		}
		return p
	case valueobjects.KindSocial:
		return SocialParams{
			Message: stringOf(values["message"]),
			APIKey:  stringOf(values["apiKey"]),
		}
	case valueobjects.KindAPI:
		p := APIParams{
			URL:    stringOf(values["url"]),
			Method: stringOf(values["method"]),
		}
		if h, ok := values["headers"].(map[string]interface{}); ok {
			p.Headers = make(map[string]string, len(h))
			for k, v := range h {
				p.Headers[k] = fmt.Sprint(v)
			}
		}
		return p
	case valueobjects.KindTime:
		return ScheduleParams{
			Schedule: stringOf(values["schedule"]),
			Timezone: stringOf(values["timezone"]),
		}
	default:
		copied := make(map[string]interface{}, len(values))
		for k, v := range values {
			copied[k] = v
		}
		return GenericParams{Values: copied}
	}
}

// Summary is a one-line description of what a configured node will do
func Summary(p Params) string {
	switch v := p.(type) {
	case TokenParams:
		if v.TokenSymbol == "" {
			return "Token not configured"
		}
		if v.Amount == nil {
			return "Watch " + v.TokenSymbol
		}
		return fmt.Sprintf("%s %s", formatNumber(*v.Amount), v.TokenSymbol)
	case SwapParams:
		if v.TokenIn == "" || v.TokenOut == "" {
			return "Swap not configured"
		}
		s := fmt.Sprintf("Swap %s → %s", v.TokenIn, v.TokenOut)
		if v.Amount != nil {
			s = fmt.Sprintf("Swap %s %s → %s", formatNumber(*v.Amount), v.TokenIn, v.TokenOut)
		}
		if v.Slippage != nil {
			s += fmt.Sprintf(" (max %s%% slippage)", formatNumber(*v.Slippage))
		}
		return s
	case WalletParams:
		if v.Network == "" {
			return "Wallet on default network"
		}
		return "Wallet on " + v.Network
	case ContractParams:
		if v.ContractAddress == "" {
			return "Contract not configured"
		}
		method := v.MethodName
		if method == "" {
			method = "?"
		}
		return fmt.Sprintf("Call %s on %s", method, shortAddress(v.ContractAddress))
	case SocialParams:
		if v.Message == "" {
			return "Empty notification"
		}
		return "Notify: " + truncate(v.Message, 40)
	case APIParams:
		if v.URL == "" {
			return "Request not configured"
		}
		method := v.Method
		if method == "" {
			method = "GET"
		}
		return method + " " + v.URL
	case ScheduleParams:
		if v.Schedule == "" {
			return "Schedule not configured"
		}
		tz := v.Timezone
		if tz == "" {
			tz = "UTC"
		}
		return fmt.Sprintf("Runs at %q (%s)", v.Schedule, tz)
	case GenericParams:
		if len(v.Values) == 0 {
			return "No parameters"
		}
		keys := make([]string, 0, len(v.Values))
		for k := range v.Values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "Parameters: " + strings.Join(keys, ", ")
	default:
		panic(fmt.Sprintf("inspector: unhandled params type %T", p))
	}
}

func stringOf(v interface{}) string {
	s, _ := v.(string)
	return s
}

func numberOf(v interface{}) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func shortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
