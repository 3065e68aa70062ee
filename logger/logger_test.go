package logger_test

import (
	"bytes"
	"encoding/json"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/tablesync/logger"
)

var _ = Describe("Logger", func() {
	log := logger.NewLoggerWithFormat("test-service", "debug", true, logger.FormatJson)

	capture := func(fn func()) map[string]interface{} {
		logOutput := bytes.NewBufferString("")
		log.SetOutput(logOutput)
		fn()
		var actual map[string]interface{}
		_ = json.Unmarshal(logOutput.Bytes(), &actual)
		return actual
	}

	It("Should have `test-service` as service name", func() {
		actual := capture(func() { log.Info("Testing") })
		Expect(actual["service"]).To(Equal("test-service"))
	})

	It("Should have info as log level", func() {
		actual := capture(func() { log.Info("Testing") })
		Expect(actual["level"]).To(Equal("info"))
	})

	It("Should have warn as log level", func() {
		actual := capture(func() { log.Warn("Testing") })
		Expect(actual["level"]).To(Equal("warning"))
	})

	It("Should have error as log level with a stack trace", func() {
		actual := capture(func() { log.Error("Testing") })
		Expect(actual["level"]).To(Equal("error"))
		Expect(actual["stackTrace"]).ToNot(BeNil())
	})

	It("Should have `Testing` as msg", func() {
		actual := capture(func() { log.Info("Testing") })
		Expect(actual["msg"]).To(Equal("Testing"))
	})

	It("Should add scoped fields without losing the service name", func() {
		scoped := log.WithField("table", "dbo.patients")
		actual := capture(func() { scoped.Info("Testing") })
		Expect(actual["table"]).To(Equal("dbo.patients"))
		Expect(actual["service"]).To(Equal("test-service"))
	})

	It("Should not add scoped fields to the parent logger", func() {
		_ = log.WithField("table", "dbo.patients")
		actual := capture(func() { log.Info("Testing") })
		Expect(actual).ToNot(HaveKey("table"))
	})
})
