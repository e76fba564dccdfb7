package grpc

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// TLSFiles names the PEM files used for mutual TLS between services
type TLSFiles struct {
	Enabled  bool
	CertFile string
	KeyFile  string
	CAFile   string
}

// ServerOption returns the transport credentials option for a server, or nil when mTLS is off
func ServerOption(files TLSFiles) (grpc.ServerOption, error) {
	if !files.Enabled {
		return nil, nil
	}

	cert, err := tls.LoadX509KeyPair(files.CertFile, files.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load server certificate: %w", err)
	}
	pool, err := loadCAPool(files.CAFile)
	if err != nil {
		return nil, err
	}

	return grpc.Creds(credentials.NewTLS(&tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientCAs:    pool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS12,
	})), nil
}

// DialOption returns transport credentials for a client, insecure when mTLS is off
func DialOption(files TLSFiles) (grpc.DialOption, error) {
	if !files.Enabled {
		return grpc.WithTransportCredentials(insecure.NewCredentials()), nil
	}

	pool, err := loadCAPool(files.CAFile)
	if err != nil {
		return nil, err
	}
	config := &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}

	if files.CertFile != "" && files.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(files.CertFile, files.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		config.Certificates = []tls.Certificate{cert}
	}

	return grpc.WithTransportCredentials(credentials.NewTLS(config)), nil
}

func loadCAPool(caFile string) (*x509.CertPool, error) {
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}
	return pool, nil
}
