// Package main provides the quill-cli command line interface for QUILL operations.
package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	quill "github.com/quillpq/quill-go"
	"github.com/quillpq/quill-go/core"
	"github.com/quillpq/quill-go/sign"
	"github.com/quillpq/quill-go/sponge"
)

const (
	version = "1.0.0"
	appName = "quill-cli"
)

// OutputFormat represents the output format for serialization
type OutputFormat string

const (
	FormatHex    OutputFormat = "hex"
	FormatBase64 OutputFormat = "base64"
	FormatJSON   OutputFormat = "json"
)

// CLIConfig holds CLI configuration
type CLIConfig struct {
	SecurityLevel quill.SecurityLevel
	OutputFormat  OutputFormat
	OutputFile    string
	InputFile     string
	Verbose       bool
	Timing        bool
}

// KeyPairExport represents an exported signature key pair
type KeyPairExport struct {
	SecurityLevel string `json:"security_level"`
	PublicKey     string `json:"public_key"`
	SecretKey     string `json:"secret_key"`
	CreatedAt     string `json:"created_at"`
	KeyHMAC       string `json:"key_hmac,omitempty"` // HMAC for integrity verification
}

// SignatureExport represents an exported signature
type SignatureExport struct {
	SecurityLevel string `json:"security_level"`
	Message       string `json:"message"`
	Signature     string `json:"signature"`
}

var allLevels = []quill.SecurityLevel{quill.Quill128, quill.Quill192, quill.Quill256}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "help", "--help", "-h":
		printUsage()
	case "version", "--version", "-v":
		fmt.Printf("%s version %s\n", appName, version)
		fmt.Printf("QUILL library version %s\n", quill.Version)
	case "keygen":
		cmdKeygen(os.Args[2:])
	case "sign":
		cmdSign(os.Args[2:])
	case "verify":
		cmdVerify(os.Args[2:])
	case "hash":
		cmdHash(os.Args[2:])
	case "params":
		cmdParams(os.Args[2:])
	case "benchmark":
		cmdBenchmark(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - QUILL Post-Quantum Signature CLI

USAGE:
    %s <COMMAND> [OPTIONS]

COMMANDS:
    keygen      Generate a new signature key pair
    sign        Sign a message
    verify      Verify a signature
    hash        Compute a SHAKE256 digest
    params      Show the parameters of a security level
    benchmark   Run performance benchmarks
    version     Show version information
    help        Show this help message

OPTIONS:
    --level <128|192|256>       Security level (default: 128)
    --output <file>             Output file (default: stdout)
    --format <hex|base64|json>  Output format (default: base64)
    --timing                    Show timing information
    --verbose                   Verbose output

EXAMPLES:
    # Generate a key pair
    %s keygen --level 128 --output keypair.json

    # Generate a reproducible key pair from a 64-byte hex seed
    %s keygen --level 192 --seed <128 hex chars> --output keypair.json

    # Sign a message
    %s sign --secret-key keypair.json --message "Document to sign"

    # Sign a file, writing the signature out
    %s sign --secret-key keypair.json --input document.txt --output document.sig

    # Verify a signature
    %s verify --public-key keypair.json --input document.txt --signature document.sig

    # Hash a file with SHAKE256
    %s hash --input document.txt --length 32 --format hex

    # Run benchmarks
    %s benchmark --level 128 --iterations 10
`, appName, appName, appName, appName, appName, appName, appName, appName, appName)
}

// ============================================================================
// Keygen Command
// ============================================================================

// generateKeyHMAC computes HMAC-SHA256 of key material for basic integrity verification.
// WARNING: This only detects accidental corruption, NOT malicious tampering. The HMAC uses
// the public key as the key material, which is not secret, so an attacker can easily forge
// valid HMACs. For security-critical applications, use cryptographic signatures instead.
func generateKeyHMAC(publicKey string, secretKey string) string {
	h := hmac.New(sha256.New, []byte(publicKey))
	h.Write([]byte(secretKey))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func cmdKeygen(args []string) {
	config := parseConfig(args)
	seedHex := getArg(args, "--seed", "-s")

	start := time.Now()
	var kp *quill.KeyPair
	var err error
	if seedHex != "" {
		seed, derr := hex.DecodeString(seedHex)
		if derr != nil {
			fmt.Fprintf(os.Stderr, "Invalid seed hex: %v\n", derr)
			os.Exit(1)
		}
		params, perr := core.GetParams(config.SecurityLevel)
		if perr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", perr)
			os.Exit(1)
		}
		kp, err = sign.GenerateKeyPairFromSeed(params, seed)
	} else {
		kp, err = sign.GenerateKeyPair(config.SecurityLevel)
	}
	elapsed := time.Since(start)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating key pair: %v\n", err)
		os.Exit(1)
	}

	if config.Timing {
		fmt.Fprintf(os.Stderr, "Key generation took: %v\n", elapsed)
	}

	pkBytes := sign.SerializePublicKey(&kp.PublicKey)
	skBytes := sign.SerializeSecretKey(&kp.SecretKey)
	kp.SecretKey.Zeroize()

	export := KeyPairExport{
		SecurityLevel: string(config.SecurityLevel),
		PublicKey:     encodeBytes(pkBytes, config.OutputFormat),
		SecretKey:     base64.StdEncoding.EncodeToString(skBytes),
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	export.KeyHMAC = generateKeyHMAC(export.PublicKey, export.SecretKey)

	output, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}

	writeOutput(output, config.OutputFile)

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Generated key pair with security level: %s\n", config.SecurityLevel)
		fmt.Fprintf(os.Stderr, "Public key size: %d bytes\n", len(pkBytes))
		fmt.Fprintf(os.Stderr, "Secret key size: %d bytes\n", len(skBytes))
	}
}

// ============================================================================
// Sign Command
// ============================================================================

func cmdSign(args []string) {
	config := parseConfig(args)
	skFile := getArg(args, "--secret-key", "-sk")
	deterministic := hasFlag(args, "--deterministic", "-d")

	if skFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --secret-key is required\n")
		os.Exit(1)
	}

	msgBytes := readMessage(args)

	sk, level, err := loadSecretKey(skFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading secret key: %v\n", err)
		os.Exit(1)
	}
	defer sk.Zeroize()

	start := time.Now()
	var sig *quill.Signature
	if deterministic {
		sig, err = sign.SignDeterministic(sk, msgBytes)
	} else {
		sig, err = sign.Sign(sk, msgBytes)
	}
	elapsed := time.Since(start)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing: %v\n", err)
		os.Exit(1)
	}

	if config.Timing {
		fmt.Fprintf(os.Stderr, "Signing took: %v\n", elapsed)
	}

	sigBytes := sign.SerializeSignature(sig, sk.Params)

	export := SignatureExport{
		SecurityLevel: string(level),
		Message:       encodeBytes(msgBytes, config.OutputFormat),
		Signature:     encodeBytes(sigBytes, config.OutputFormat),
	}

	output, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}

	writeOutput(output, config.OutputFile)

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Signature successful\n")
		fmt.Fprintf(os.Stderr, "Message size: %d bytes\n", len(msgBytes))
		fmt.Fprintf(os.Stderr, "Signature size: %d bytes\n", len(sigBytes))
	}
}

// ============================================================================
// Verify Command
// ============================================================================

func cmdVerify(args []string) {
	config := parseConfig(args)
	pkFile := getArg(args, "--public-key", "-pk")
	sigFile := getArg(args, "--signature", "-sig")

	if pkFile == "" || sigFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --public-key and --signature are required\n")
		os.Exit(1)
	}

	msgBytes := readMessageOptional(args)
	if msgBytes == nil {
		// Try to get message from signature file
		if data, err := os.ReadFile(sigFile); err == nil {
			var sigExport SignatureExport
			if err := json.Unmarshal(data, &sigExport); err == nil && sigExport.Message != "" {
				msgBytes, err = decodeString(sigExport.Message)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error decoding message: %v\n", err)
					os.Exit(1)
				}
			}
		}
	}
	if msgBytes == nil {
		fmt.Fprintf(os.Stderr, "Error: message is required (use --message, --input, or include in signature file)\n")
		os.Exit(1)
	}

	pk, level, err := loadPublicKey(pkFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading public key: %v\n", err)
		os.Exit(1)
	}

	sigData, err := loadKeyFromFile(sigFile, "signature")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading signature: %v\n", err)
		os.Exit(1)
	}

	sig, err := sign.DeserializeSignature(sigData, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deserializing signature: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	valid, err := sign.Verify(pk, msgBytes, sig)
	elapsed := time.Since(start)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error verifying: %v\n", err)
		os.Exit(1)
	}

	if config.Timing {
		fmt.Fprintf(os.Stderr, "Verification took: %v\n", elapsed)
	}

	result := map[string]interface{}{
		"valid":   valid,
		"message": encodeBytes(msgBytes, config.OutputFormat),
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}

	writeOutput(output, config.OutputFile)

	if valid {
		if config.Verbose {
			fmt.Fprintf(os.Stderr, "Signature is VALID\n")
		}
		os.Exit(0)
	} else {
		if config.Verbose {
			fmt.Fprintf(os.Stderr, "Signature is INVALID\n")
		}
		os.Exit(1)
	}
}

// ============================================================================
// Hash Command
// ============================================================================

func cmdHash(args []string) {
	config := parseConfig(args)
	lengthStr := getArg(args, "--length", "-n")

	length := 32
	if lengthStr != "" {
		if _, err := fmt.Sscanf(lengthStr, "%d", &length); err != nil || length < 1 {
			fmt.Fprintf(os.Stderr, "Error: invalid length '%s'\n", lengthStr)
			os.Exit(1)
		}
	}

	input := readMessage(args)

	start := time.Now()
	digest := sponge.Hash(input, length)
	elapsed := time.Since(start)

	if config.Timing {
		fmt.Fprintf(os.Stderr, "Hashing took: %v\n", elapsed)
	}

	if config.OutputFormat == FormatJSON {
		result := map[string]interface{}{
			"algorithm": "SHAKE256",
			"length":    length,
			"digest":    base64.StdEncoding.EncodeToString(digest),
		}
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
			os.Exit(1)
		}
		writeOutput(output, config.OutputFile)
		return
	}

	writeOutput([]byte(encodeBytes(digest, config.OutputFormat)), config.OutputFile)
}

// ============================================================================
// Params Command
// ============================================================================

func cmdParams(args []string) {
	config := parseConfig(args)

	params, err := core.GetParams(config.SecurityLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	result := map[string]interface{}{
		"parameters":      params,
		"public_key_size": params.PublicKeySize(),
		"secret_key_size": params.SecretKeySize(),
		"signature_size":  params.SignatureSize(),
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}

	writeOutput(output, config.OutputFile)
}

// ============================================================================
// Benchmark Command
// ============================================================================

func cmdBenchmark(args []string) {
	config := parseConfig(args)
	iterationsStr := getArg(args, "--iterations", "-n")

	iterations := 10
	if iterationsStr != "" {
		_, _ = fmt.Sscanf(iterationsStr, "%d", &iterations)
	}
	if iterations < 1 {
		iterations = 1
	}

	fmt.Printf("QUILL Benchmark Results\n")
	fmt.Printf("=======================\n")
	fmt.Printf("Security Level: %s\n", config.SecurityLevel)
	fmt.Printf("Iterations: %d\n\n", iterations)

	fmt.Println("Digital Signatures")
	fmt.Println("------------------")

	// KeyGen
	var keygenTotal time.Duration
	var kp *quill.KeyPair
	for i := 0; i < iterations; i++ {
		start := time.Now()
		var err error
		kp, err = sign.GenerateKeyPair(config.SecurityLevel)
		keygenTotal += time.Since(start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Keygen error: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("  KeyGen:      %v (avg)\n", keygenTotal/time.Duration(iterations))

	testMessage := []byte("Benchmark message for signing performance measurement")

	// Sign
	var signTotal time.Duration
	var sig *quill.Signature
	for i := 0; i < iterations; i++ {
		start := time.Now()
		var err error
		sig, err = sign.Sign(&kp.SecretKey, testMessage)
		signTotal += time.Since(start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Sign error: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("  Sign:        %v (avg)\n", signTotal/time.Duration(iterations))

	// Verify
	var verifyTotal time.Duration
	for i := 0; i < iterations; i++ {
		start := time.Now()
		valid, err := sign.Verify(&kp.PublicKey, testMessage, sig)
		verifyTotal += time.Since(start)
		if err != nil || !valid {
			fmt.Fprintf(os.Stderr, "Verify failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("  Verify:      %v (avg)\n", verifyTotal/time.Duration(iterations))

	fmt.Println()
	fmt.Println("XOF")
	fmt.Println("---")

	// SHAKE256 over 64 KiB
	block := make([]byte, 64*1024)
	for i := range block {
		block[i] = byte(i)
	}
	var hashTotal time.Duration
	for i := 0; i < iterations; i++ {
		start := time.Now()
		_ = sponge.Hash(block, 32)
		hashTotal += time.Since(start)
	}
	fmt.Printf("  SHAKE256 64KiB: %v (avg)\n", hashTotal/time.Duration(iterations))

	fmt.Println()
	fmt.Println("Benchmark complete!")
}

// ============================================================================
// Utility Functions
// ============================================================================

func parseConfig(args []string) CLIConfig {
	config := CLIConfig{
		SecurityLevel: quill.Quill128,
		OutputFormat:  FormatBase64,
	}

	level := getArg(args, "--level", "-l")
	switch level {
	case "128", "QUILL-128", "QUILL_128":
		config.SecurityLevel = quill.Quill128
	case "192", "QUILL-192", "QUILL_192":
		config.SecurityLevel = quill.Quill192
	case "256", "QUILL-256", "QUILL_256":
		config.SecurityLevel = quill.Quill256
	case "":
		// No level specified, use default
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid security level '%s'. Must be one of: 128, 192, 256\n", level)
		os.Exit(1)
	}

	format := getArg(args, "--format", "-f")
	switch format {
	case "hex":
		config.OutputFormat = FormatHex
	case "base64":
		config.OutputFormat = FormatBase64
	case "json":
		config.OutputFormat = FormatJSON
	case "":
		// No format specified, use default
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid format '%s'. Must be one of: hex, base64, json\n", format)
		os.Exit(1)
	}

	config.OutputFile = getArg(args, "--output", "-o")
	config.InputFile = getArg(args, "--input", "-i")
	config.Verbose = hasFlag(args, "--verbose", "-v")
	config.Timing = hasFlag(args, "--timing", "-t")

	return config
}

func getArg(args []string, long, short string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == long || args[i] == short {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, long, short string) bool {
	for _, arg := range args {
		if arg == long || arg == short {
			return true
		}
	}
	return false
}

// readMessage resolves the message bytes from --message, --input, or stdin.
func readMessage(args []string) []byte {
	if msg := readMessageOptional(args); msg != nil {
		return msg
	}
	msgBytes, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading from stdin: %v\n", err)
		os.Exit(1)
	}
	return msgBytes
}

// readMessageOptional returns nil when neither --message nor --input is given.
func readMessageOptional(args []string) []byte {
	if message := getArg(args, "--message", "-m"); message != "" {
		return []byte(message)
	}
	if inputFile := getArg(args, "--input", "-i"); inputFile != "" {
		msgBytes, err := os.ReadFile(inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
		return msgBytes
	}
	return nil
}

func encodeBytes(data []byte, format OutputFormat) string {
	switch format {
	case FormatHex:
		return hex.EncodeToString(data)
	case FormatBase64:
		return base64.StdEncoding.EncodeToString(data)
	default:
		return base64.StdEncoding.EncodeToString(data)
	}
}

func decodeString(s string) ([]byte, error) {
	// Try base64 first
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	// Try hex
	if data, err := hex.DecodeString(s); err == nil {
		return data, nil
	}
	return nil, fmt.Errorf("unable to decode string")
}

// parseLevelName maps a declared security level string to a known level.
func parseLevelName(s string) (quill.SecurityLevel, bool) {
	for _, level := range allLevels {
		if s == string(level) {
			return level, true
		}
	}
	return "", false
}

// levelForSize finds the security level whose derived size matches n.
func levelForSize(n int, sizeOf func(quill.ParameterSet) int) (quill.SecurityLevel, bool) {
	for _, level := range allLevels {
		params, err := core.GetParams(level)
		if err != nil {
			continue
		}
		if sizeOf(params) == n {
			return level, true
		}
	}
	return "", false
}

// loadDeclaredLevel returns the security_level field of a JSON key file, or
// empty when the file is not JSON or carries no level.
func loadDeclaredLevel(filename string) quill.SecurityLevel {
	data, err := os.ReadFile(filename)
	if err != nil {
		return ""
	}
	var jsonData map[string]interface{}
	if err := json.Unmarshal(data, &jsonData); err != nil {
		return ""
	}
	if val, ok := jsonData["security_level"].(string); ok {
		if level, ok := parseLevelName(val); ok {
			return level
		}
	}
	return ""
}

// loadPublicKey loads a public key from a key pair JSON file or a raw
// base64/hex file, resolving the security level from the declared field or
// from the key length.
func loadPublicKey(filename string) (*quill.PublicKey, quill.SecurityLevel, error) {
	data, err := loadKeyFromFile(filename, "public_key")
	if err != nil {
		return nil, "", err
	}

	level := loadDeclaredLevel(filename)
	if level == "" {
		var ok bool
		level, ok = levelForSize(len(data), quill.ParameterSet.PublicKeySize)
		if !ok {
			return nil, "", fmt.Errorf("cannot determine security level from %d-byte public key", len(data))
		}
	}

	pk, err := sign.DeserializePublicKey(data, level)
	if err != nil {
		return nil, "", err
	}
	return pk, level, nil
}

// loadSecretKey loads a secret key the same way.
func loadSecretKey(filename string) (*quill.SecretKey, quill.SecurityLevel, error) {
	data, err := loadKeyFromFile(filename, "secret_key")
	if err != nil {
		return nil, "", err
	}

	level := loadDeclaredLevel(filename)
	if level == "" {
		var ok bool
		level, ok = levelForSize(len(data), quill.ParameterSet.SecretKeySize)
		if !ok {
			return nil, "", fmt.Errorf("cannot determine security level from %d-byte secret key", len(data))
		}
	}

	sk, err := sign.DeserializeSecretKey(data, level)
	if err != nil {
		return nil, "", err
	}
	return sk, level, nil
}

func loadKeyFromFile(filename, keyField string) ([]byte, error) {
	const MaxInputFileSize = 100 * 1024 * 1024 // 100 MB limit

	// Check file size before reading
	info, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > MaxInputFileSize {
		return nil, fmt.Errorf("input file too large: %d > %d bytes", info.Size(), MaxInputFileSize)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	// Try to parse as JSON
	var jsonData map[string]interface{}
	if err := json.Unmarshal(data, &jsonData); err == nil {
		// JSON format - extract the specific key
		if val, ok := jsonData[keyField]; ok {
			if strVal, ok := val.(string); ok {
				return decodeString(strVal)
			}
		}
		// If no specific field, try common field names based on keyField
		fieldMappings := map[string][]string{
			"public_key": {"public_key", "publicKey", "pk"},
			"secret_key": {"secret_key", "secretKey", "sk"},
			"signature":  {"signature", "sig"},
		}
		if fields, ok := fieldMappings[keyField]; ok {
			for _, field := range fields {
				if val, ok := jsonData[field]; ok {
					if strVal, ok := val.(string); ok {
						return decodeString(strVal)
					}
				}
			}
		}
	}

	// Try raw encoding
	trimmed := strings.TrimSpace(string(data))

	// Try base64
	if decoded, err := base64.StdEncoding.DecodeString(trimmed); err == nil {
		return decoded, nil
	}

	// Try hex
	if decoded, err := hex.DecodeString(trimmed); err == nil {
		return decoded, nil
	}

	return nil, fmt.Errorf("unable to parse file format")
}

func writeOutput(data []byte, filename string) {
	if filename != "" {
		// Key material goes to disk owner-readable only.
		f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		if _, err := f.Write(data); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}

		// Ensure permissions are enforced even if umask is permissive
		if err := os.Chmod(filename, 0600); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting file permissions: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println(string(data))
	}
}
