package io_test

import (
	"bytes"
	"errors"
	"fmt"
	stdio "io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ezrec/avrsim/io"
)

// hexRecord formats an Intel HEX record line.
func hexRecord(kind byte, address uint16, data ...byte) string {
	sum := byte(len(data)) + byte(address>>8) + byte(address) + kind
	for _, b := range data {
		sum += b
	}
	return fmt.Sprintf(":%02X%04X%02X%X%02X", len(data), address, kind, data, -sum)
}

var _ = Describe("Intel HEX", func() {
	Describe("ReadHex", func() {
		It("should load a contiguous image", func() {
			text := strings.Join([]string{
				":040000000C943400" + "28",
				":04000400E005B9005A",
				":00000001FF",
			}, "\n")

			image, err := io.ReadHex(strings.NewReader(text))
			Expect(err).NotTo(HaveOccurred())
			Expect(image.Base).To(Equal(uint32(0)))
			Expect(image.Data).To(Equal([]byte{0x0c, 0x94, 0x34, 0x00, 0xe0, 0x05, 0xb9, 0x00}))
			Expect(image.HasStart).To(BeFalse())

			words, err := image.Words()
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(Equal([]uint16{0x940c, 0x0034, 0x05e0, 0x00b9}))
		})

		It("should honour extended linear addresses", func() {
			text := strings.Join([]string{
				hexRecord(0x04, 0, 0x00, 0x01),
				hexRecord(0x00, 0x0010, 0x08, 0x95),
				hexRecord(0x01, 0),
			}, "\n")

			image, err := io.ReadHex(strings.NewReader(text))
			Expect(err).NotTo(HaveOccurred())
			Expect(image.Base).To(Equal(uint32(0x10010)))
		})

		It("should honour extended segment addresses", func() {
			text := strings.Join([]string{
				hexRecord(0x02, 0, 0x10, 0x00),
				hexRecord(0x00, 0x0004, 0x08, 0x95),
				hexRecord(0x01, 0),
			}, "\n")

			image, err := io.ReadHex(strings.NewReader(text))
			Expect(err).NotTo(HaveOccurred())
			Expect(image.Base).To(Equal(uint32(0x10004)))
		})

		It("should report a start linear address", func() {
			text := strings.Join([]string{
				hexRecord(0x00, 0x0000, 0x08, 0x95),
				hexRecord(0x05, 0, 0x00, 0x00, 0x12, 0x34),
				hexRecord(0x01, 0),
			}, "\n")

			image, err := io.ReadHex(strings.NewReader(text))
			Expect(err).NotTo(HaveOccurred())
			Expect(image.HasStart).To(BeTrue())
			Expect(image.Start).To(Equal(uint32(0x1234)))
		})

		It("should reject a bad checksum", func() {
			text := ":040000000C94340029\n:00000001FF\n"

			image, err := io.ReadHex(strings.NewReader(text))
			Expect(image).To(BeNil())
			Expect(err).To(MatchError(io.ErrHexParse))
		})

		It("should reject non-hex characters", func() {
			_, err := io.ReadHex(strings.NewReader(":0000000GFF\n:00000001FF\n"))
			Expect(err).To(MatchError(io.ErrHexParse))
		})

		It("should reject gaps between data records", func() {
			text := strings.Join([]string{
				hexRecord(0x00, 0x0000, 0x08, 0x95),
				hexRecord(0x00, 0x0010, 0x08, 0x95),
				hexRecord(0x01, 0),
			}, "\n")

			image, err := io.ReadHex(strings.NewReader(text))
			Expect(image).To(BeNil())
			var gap io.ErrHexGap
			Expect(errors.As(err, &gap)).To(BeTrue())
			Expect(gap.Address).To(Equal(uint32(0x10)))
			Expect(gap.Expected).To(Equal(uint32(0x02)))
		})

		It("should require an end of file record", func() {
			text := hexRecord(0x00, 0, 0x08, 0x95)

			_, err := io.ReadHex(strings.NewReader(text))
			Expect(err).To(MatchError(io.ErrHexParse))
		})
	})

	Describe("WriteHex", func() {
		It("should round trip an image through ReadHex", func() {
			data := make([]byte, 40)
			for n := range data {
				data[n] = byte(n * 7)
			}
			image := &io.Image{Base: 0xfff0, Data: data, Start: 0x1234, HasStart: true}

			buf := &bytes.Buffer{}
			Expect(io.WriteHex(buf, image)).To(Succeed())
			Expect(buf.String()).To(ContainSubstring(":00000001FF"))

			loaded, err := io.ReadHex(buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(image))
		})

		It("should round trip an image across a 64K boundary", func() {
			image := &io.Image{Base: 0xfffe, Data: []byte{1, 2, 3, 4}}

			buf := &bytes.Buffer{}
			Expect(io.WriteHex(buf, image)).To(Succeed())

			loaded, err := io.ReadHex(buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(image))
		})

		It("should write an empty image", func() {
			buf := &bytes.Buffer{}
			Expect(io.WriteHex(buf, &io.Image{})).To(Succeed())

			loaded, err := io.ReadHex(buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Data).To(BeEmpty())
			Expect(loaded.HasStart).To(BeFalse())
		})
	})

	Describe("Image", func() {
		It("should reject odd length images", func() {
			_, err := (&io.Image{Data: []byte{1, 2, 3}}).Words()
			Expect(err).To(MatchError(io.ErrHexOddLength))
		})

		It("should convert to a rom at the image base", func() {
			image := io.ImageOf(0x10, []uint16{0x9508, 0x94f8})
			Expect(image.Base).To(Equal(uint32(0x20)))
			Expect(image.Data).To(Equal([]byte{0x08, 0x95, 0xf8, 0x94}))

			rom, err := image.Rom()
			Expect(err).NotTo(HaveOccurred())
			Expect(rom.Offset()).To(Equal(0x10))

			word, err := rom.NextWord()
			Expect(err).NotTo(HaveOccurred())
			Expect(word).To(Equal(uint16(0x9508)))
			Expect(rom.Offset()).To(Equal(0x11))
		})
	})
})

var _ = Describe("Rom", func() {
	It("should signal end of stream with io.EOF", func() {
		rom := &io.Rom{Data: []uint16{0x2411}}

		word, err := rom.NextWord()
		Expect(err).NotTo(HaveOccurred())
		Expect(word).To(Equal(uint16(0x2411)))

		_, err = rom.NextWord()
		Expect(err).To(MatchError(stdio.EOF))
		Expect(rom.Offset()).To(Equal(1))
	})

	It("should rewind to the first word", func() {
		rom := &io.Rom{Base: 4, Data: []uint16{0x2411, 0x9508}}
		_, _ = rom.NextWord()
		_, _ = rom.NextWord()
		Expect(rom.Offset()).To(Equal(6))

		rom.Rewind()
		Expect(rom.Offset()).To(Equal(4))
		word, err := rom.NextWord()
		Expect(err).NotTo(HaveOccurred())
		Expect(word).To(Equal(uint16(0x2411)))
	})
})
