package forms

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"xmpp-homepage/app/server/bootstrap"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

// GpgMimeTypes 是允许上传的密钥文件类型
var GpgMimeTypes = []string{
	"application/pgp-keys",
	"application/pgp-encrypted",
	"application/octet-stream",
	"text/plain",
}

// NormalizeFingerprint 去掉空格并转为大写
func NormalizeFingerprint(value string) string {
	return strings.ToUpper(strings.ReplaceAll(value, " ", ""))
}

func validateFingerprint(value string) *bootstrap.ValidationError {
	fp := NormalizeFingerprint(value)
	if len(fp) != 40 {
		return &bootstrap.ValidationError{Code: bootstrap.CodeInvalid}
	}
	if _, err := hex.DecodeString(fp); err != nil {
		return &bootstrap.ValidationError{Code: bootstrap.CodeInvalid}
	}
	return nil
}

type GpgKeyInfo struct {
	Fingerprint string
	Expires     *time.Time
	Armored     string
}

// ParseGpgKey 读取 ASCII armor 或二进制格式的公钥，只使用第一个密钥
func ParseGpgKey(data []byte) (*GpgKeyInfo, error) {
	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		if entities, err = openpgp.ReadKeyRing(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to read key: %w", err)
		}
	}
	if len(entities) == 0 {
		return nil, errors.New("no key found")
	}
	entity := entities[0]

	info := &GpgKeyInfo{
		Fingerprint: strings.ToUpper(hex.EncodeToString(entity.PrimaryKey.Fingerprint)),
	}
	if ident := entity.PrimaryIdentity(); ident != nil && ident.SelfSignature != nil {
		if lifetime := ident.SelfSignature.KeyLifetimeSecs; lifetime != nil && *lifetime > 0 {
			expires := entity.PrimaryKey.CreationTime.Add(time.Duration(*lifetime) * time.Second)
			info.Expires = &expires
		}
	}

	// 只保存公钥部分
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to armor key: %w", err)
	}
	if err := entity.Serialize(w); err != nil {
		return nil, fmt.Errorf("failed to serialize key: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to armor key: %w", err)
	}
	info.Armored = buf.String()

	return info, nil
}
