package env

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/sethvargo/go-envconfig"
	"go.uber.org/zap/zapcore"
)

var _ = Describe("env", func() {
	Describe("loadConfig()", func() {
		It("falls back to the defaults", func() {
			config, err := loadConfig(context.Background(), envconfig.MapLookuper(map[string]string{}))
			Expect(err).To(Succeed())
			Expect(config).To(Equal(&Config{
				UDPTimeout:  2 * time.Second,
				UDPAttempts: 5,
				TCPTimeout:  10 * time.Second,
				MaxFailures: 5,
			}))
		})

		It("reads AUCTION_ variables", func() {
			config, err := loadConfig(context.Background(), envconfig.MapLookuper(map[string]string{
				"AUCTION_UDP_TIMEOUT":  "500ms",
				"AUCTION_UDP_ATTEMPTS": "2",
				"AUCTION_STATE_FILE":   "/tmp/auctions.json",
				"AUCTION_DEBUG_HTTP":   "true",
			}))
			Expect(err).To(Succeed())
			Expect(config.UDPTimeout).To(Equal(500 * time.Millisecond))
			Expect(config.UDPAttempts).To(Equal(2))
			Expect(config.StateFile).To(Equal("/tmp/auctions.json"))
			Expect(config.DebugHTTP).To(BeTrue())
		})

		It("refuses a zero attempt bound", func() {
			_, err := loadConfig(context.Background(), envconfig.MapLookuper(map[string]string{
				"AUCTION_UDP_ATTEMPTS": "0",
			}))
			Expect(err).To(MatchError(ContainSubstring("AUCTION_UDP_ATTEMPTS")))
		})

		It("refuses values it cannot parse", func() {
			_, err := loadConfig(context.Background(), envconfig.MapLookuper(map[string]string{
				"AUCTION_TCP_TIMEOUT": "soon",
			}))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("MakeLogger()", func() {
		It("logs debug only when verbose", func() {
			quiet, err := MakeLogger(false)
			Expect(err).To(Succeed())
			Expect(quiet.Core().Enabled(zapcore.DebugLevel)).To(BeFalse())

			verbose, err := MakeLogger(true)
			Expect(err).To(Succeed())
			Expect(verbose.Core().Enabled(zapcore.DebugLevel)).To(BeTrue())
		})
	})
})
