// Package config loads the engine's recognised environment options,
// grounded on guidebee-SolRoute/pkg/config/env.go's dotenv-then-os.Getenv
// convention — generalized here to use the pack's github.com/joho/godotenv
// for the preload step instead of a hand-rolled scanner.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/solarb/arbengine/pkg/dex"
)

// Config is the nine recognised options of spec.md §6.
type Config struct {
	BaseMint          solana.PublicKey
	ProbeAmount       uint64
	MaxProbeAmount    uint64
	MinProfitLamports uint64
	TipRateNum        uint64
	TipRateDen        uint64
	RelayEndpoints    []string
	RPCEndpoint       string
	SubscriptionEndpoint string
	DexJSONPath       string
}

// Load preloads dotEnvPath (if present, missing is not an error — matching
// env.go's LoadEnv) then reads and validates every recognised option from
// the process environment.
func Load(dotEnvPath string) (Config, error) {
	if dotEnvPath != "" {
		_ = godotenv.Load(dotEnvPath)
	}

	var c Config
	var err error

	c.BaseMint, err = pubkeyEnv("BASE_MINT")
	if err != nil {
		return Config{}, err
	}
	c.ProbeAmount, err = uintEnv("PROBE_AMOUNT")
	if err != nil {
		return Config{}, err
	}
	c.MaxProbeAmount, err = uintEnv("MAX_PROBE_AMOUNT")
	if err != nil {
		return Config{}, err
	}
	if c.MaxProbeAmount < c.ProbeAmount {
		return Config{}, dex.ConfigErr("MAX_PROBE_AMOUNT must be >= PROBE_AMOUNT", nil)
	}
	c.MinProfitLamports, err = uintEnv("MIN_PROFIT_LAMPORTS")
	if err != nil {
		return Config{}, err
	}
	c.TipRateNum, c.TipRateDen, err = tipRateEnv("TIP_RATE")
	if err != nil {
		return Config{}, err
	}

	relays := os.Getenv("RELAY_ENDPOINTS")
	if relays == "" {
		return Config{}, dex.ConfigErr("RELAY_ENDPOINTS is required", nil)
	}
	for _, r := range strings.Split(relays, ",") {
		if r = strings.TrimSpace(r); r != "" {
			c.RelayEndpoints = append(c.RelayEndpoints, r)
		}
	}
	if len(c.RelayEndpoints) == 0 {
		return Config{}, dex.ConfigErr("RELAY_ENDPOINTS contained no usable endpoint", nil)
	}

	c.RPCEndpoint, err = stringEnv("RPC_ENDPOINT")
	if err != nil {
		return Config{}, err
	}
	c.SubscriptionEndpoint, err = stringEnv("SUBSCRIPTION_ENDPOINT")
	if err != nil {
		return Config{}, err
	}
	c.DexJSONPath, err = stringEnv("DEX_JSON_PATH")
	if err != nil {
		return Config{}, err
	}
	return c, nil
}

func stringEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", dex.ConfigErr(key+" is required", nil)
	}
	return v, nil
}

func pubkeyEnv(key string) (solana.PublicKey, error) {
	v, err := stringEnv(key)
	if err != nil {
		return solana.PublicKey{}, err
	}
	pk, err := solana.PublicKeyFromBase58(v)
	if err != nil {
		return solana.PublicKey{}, dex.ConfigErr(key+" is not a valid base58 public key", err)
	}
	return pk, nil
}

func uintEnv(key string) (uint64, error) {
	v, err := stringEnv(key)
	if err != nil {
		return 0, err
	}
	n, parseErr := strconv.ParseUint(v, 10, 64)
	if parseErr != nil {
		return 0, dex.ConfigErr(key+" is not a valid unsigned integer", parseErr)
	}
	return n, nil
}

// tipRateEnv parses a "num/den" fraction, e.g. "1/1000".
func tipRateEnv(key string) (uint64, uint64, error) {
	v, err := stringEnv(key)
	if err != nil {
		return 0, 0, err
	}
	parts := strings.SplitN(v, "/", 2)
	if len(parts) != 2 {
		return 0, 0, dex.ConfigErr(key+" must be formatted numerator/denominator", nil)
	}
	num, errN := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
	den, errD := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if errN != nil || errD != nil || den == 0 {
		return 0, 0, dex.ConfigErr(key+" must be two positive integers separated by /", nil)
	}
	return num, den, nil
}
