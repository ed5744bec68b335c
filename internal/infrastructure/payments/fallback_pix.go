package payments

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"loja_pix/internal/domain/entities"
	"loja_pix/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
)

const (
	// FallbackWindow is how long a locally generated PIX code is shown as payable.
	FallbackWindow = 30 * time.Minute

	qrServerURL = "https://api.qrserver.com/v1/create-qr-code/?size=300x300&data="
	pixGUI      = "BR.GOV.BCB.PIX"
)

// FallbackPixGenerator builds a BR Code shaped payload (EMV TLV, CRC16 in
// field 63) keyed by the correlation id. It is a demo instrument: no bank
// knows the key, so it can be displayed but never settles.
type FallbackPixGenerator struct {
	MerchantName string
	MerchantCity string
	Window       time.Duration
}

var _ interfaces.IFallbackPixGenerator = (*FallbackPixGenerator)(nil)

func NewFallbackPixGenerator() *FallbackPixGenerator {
	return &FallbackPixGenerator{
		MerchantName: "LOJA PIX DEMO",
		MerchantCity: "SAO PAULO",
		Window:       FallbackWindow,
	}
}

func (g *FallbackPixGenerator) Generate(amount decimal.Decimal, correlationID string, now time.Time) entities.PixCharge {
	window := g.Window
	if window <= 0 {
		window = FallbackWindow
	}
	code := BuildPixPayload(amount, correlationID, g.MerchantName, g.MerchantCity)
	return entities.PixCharge{
		PixCode:   code,
		QRCodeURL: QRCodeURL(code),
		ExpiresAt: now.Add(window).UTC(),
		Provider:  entities.ProviderFallback,
	}
}

// QRCodeURL points to a public renderer for the given payload.
func QRCodeURL(code string) string {
	return qrServerURL + url.QueryEscape(code)
}

// BuildPixPayload assembles the EMV fields in order and appends the checksum.
func BuildPixPayload(amount decimal.Decimal, key, merchantName, merchantCity string) string {
	var b strings.Builder
	b.WriteString(tlv("00", "01"))
	b.WriteString(tlv("01", "12"))
	b.WriteString(tlv("26", tlv("00", pixGUI)+tlv("01", key)))
	b.WriteString(tlv("52", "0000"))
	b.WriteString(tlv("53", "986"))
	b.WriteString(tlv("54", amount.StringFixed(2)))
	b.WriteString(tlv("58", "BR"))
	b.WriteString(tlv("59", clip(strings.ToUpper(merchantName), 25)))
	b.WriteString(tlv("60", clip(strings.ToUpper(merchantCity), 15)))
	b.WriteString(tlv("62", tlv("05", "***")))
	b.WriteString("6304")
	payload := b.String()
	return payload + fmt.Sprintf("%04X", crc16CCITT([]byte(payload)))
}

func tlv(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// crc16CCITT is CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF), the checksum
// BR Code readers verify.
func crc16CCITT(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, c := range data {
		crc ^= uint16(c) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
