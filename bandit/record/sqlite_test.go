package record_test

import (
	"database/sql"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit/record"
)

var _ = Describe("SQLiteWriter", func() {
	var (
		dir  string
		path string
		w    *record.SQLiteWriter
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "mab-sqlite")
		Expect(err).ToNot(HaveOccurred())
		path = filepath.Join(dir, "decisions.sqlite3")

		w, err = record.NewSQLiteWriter(path)
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		w.Close()
		os.RemoveAll(dir)
	})

	It("should create both tables", func() {
		for _, table := range []string{"decision_epoch", "epoch_metric"} {
			var name string
			err := w.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?;", table).Scan(&name)
			Expect(err).ToNot(HaveOccurred())
			Expect(name).To(Equal(table))
		}
	})

	It("should store one row per epoch and one per metric", func() {
		for _, e := range sampleEpochs(4) {
			Expect(w.Write(e)).To(Succeed())
		}
		Expect(w.Close()).To(Succeed())

		db, err := sql.Open("sqlite3", path)
		Expect(err).ToNot(HaveOccurred())
		defer db.Close()

		var epochs, metrics int
		Expect(db.QueryRow("SELECT COUNT(*) FROM decision_epoch").Scan(&epochs)).To(Succeed())
		Expect(db.QueryRow("SELECT COUNT(*) FROM epoch_metric").Scan(&metrics)).To(Succeed())
		Expect(epochs).To(Equal(4))
		Expect(metrics).To(Equal(8))

		var (
			armID    int
			armName  string
			reward   float64
			ts       int64
			fallback int
		)
		err = db.QueryRow("SELECT ArmID, ArmName, Reward, Timestamp, Fallback FROM decision_epoch WHERE Epoch=2").
			Scan(&armID, &armName, &reward, &ts, &fallback)
		Expect(err).ToNot(HaveOccurred())
		Expect(armID).To(Equal(2))
		Expect(armName).To(Equal("stride"))
		Expect(reward).To(Equal(0.5))
		Expect(ts).To(Equal(int64(3000)))
		Expect(fallback).To(Equal(1))

		var ipc float64
		err = db.QueryRow("SELECT Value FROM epoch_metric WHERE Epoch=1 AND Name='ipc'").Scan(&ipc)
		Expect(err).ToNot(HaveOccurred())
		Expect(ipc).To(BeNumerically("~", 1.1, 1e-12))
	})

	It("should reject out of order epochs", func() {
		epochs := sampleEpochs(2)
		Expect(w.Write(epochs[1])).To(MatchError(ContainSubstring("out of order")))
	})

	It("should refuse to overwrite an existing database", func() {
		_, err := record.NewSQLiteWriter(path)
		Expect(err).To(MatchError(ContainSubstring("already exists")))
	})
})
