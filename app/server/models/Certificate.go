package models

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Certificate struct {
	gorm.Model

	// 证书的基础信息
	Hostname   string      `gorm:"column:hostname;index"`    // 证书所属的 XMPP 域名
	ValidFrom  time.Time   `gorm:"column:valid_from"`        // 生效时间
	ValidUntil time.Time   `gorm:"column:valid_until;index"` // 过期时间
	Serial     string      `gorm:"column:serial"`            // 序列号（十六进制）
	KeySize    int         `gorm:"column:key_size"`          // 公钥长度
	DNSNames   StringArray `gorm:"column:dns_names"`         // 证书包含的域名
	Enabled    bool        `gorm:"column:enabled;index"`     // 被禁用的证书不会在任何地方显示

	// 指纹
	SHA1   string `gorm:"column:sha1"`
	SHA256 string `gorm:"column:sha256"`
	SHA512 string `gorm:"column:sha512"`

	// 证书本体
	PEM string `gorm:"column:pem"`
}

func CertificateEnabled(db *gorm.DB) *gorm.DB {
	return db.Where("certificates.enabled = ?", true)
}

func fingerprint(sum []byte) string {
	parts := make([]string, len(sum))
	for i, b := range sum {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}

// ParseCertificatePEM 读取 PEM 编码的证书并填充元数据字段
func (c *Certificate) ParseCertificatePEM(certificate string) error {
	block, _ := pem.Decode([]byte(certificate))
	if block == nil || block.Type != "CERTIFICATE" {
		return fmt.Errorf("no certificate found in pem data")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}

	c.PEM = certificate
	c.ValidFrom = cert.NotBefore
	c.ValidUntil = cert.NotAfter
	c.Serial = fmt.Sprintf("%X", cert.SerialNumber)
	c.DNSNames = cert.DNSNames
	if c.Hostname == "" {
		c.Hostname = cert.Subject.CommonName
	}

	switch pub := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		c.KeySize = pub.N.BitLen()
	case *ecdsa.PublicKey:
		c.KeySize = pub.Curve.Params().BitSize
	case ed25519.PublicKey:
		c.KeySize = 256
	}

	sum1 := sha1.Sum(block.Bytes)
	sum256 := sha256.Sum256(block.Bytes)
	sum512 := sha512.Sum512(block.Bytes)
	c.SHA1 = fingerprint(sum1[:])
	c.SHA256 = fingerprint(sum256[:])
	c.SHA512 = fingerprint(sum512[:])

	return nil
}
