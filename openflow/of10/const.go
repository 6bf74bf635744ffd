/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package of10

const (
	OFPT_HELLO = iota
	OFPT_ERROR
	OFPT_ECHO_REQUEST
	OFPT_ECHO_REPLY
	OFPT_VENDOR
	OFPT_FEATURES_REQUEST
	OFPT_FEATURES_REPLY
	OFPT_GET_CONFIG_REQUEST
	OFPT_GET_CONFIG_REPLY
	OFPT_SET_CONFIG
	OFPT_PACKET_IN
	OFPT_FLOW_REMOVED
	OFPT_PORT_STATUS
	OFPT_PACKET_OUT
	OFPT_FLOW_MOD
	OFPT_PORT_MOD
	OFPT_STATS_REQUEST
	OFPT_STATS_REPLY
	OFPT_BARRIER_REQUEST
	OFPT_BARRIER_REPLY
)

const (
	OFPAT_OUTPUT     = 0 /* Output to switch port. */
	OFPAT_SET_DL_DST = 5 /* Ethernet destination address. */
)

const (
	OFPP_MAX        = 0xff00
	OFPP_IN_PORT    = 0xfff8
	OFPP_TABLE      = 0xfff9
	OFPP_FLOOD      = 0xfffb
	OFPP_ALL        = 0xfffc
	OFPP_CONTROLLER = 0xfffd
	OFPP_LOCAL      = 0xfffe
	OFPP_NONE       = 0xffff
)

const (
	OFPFW_IN_PORT     = 1 << 0  /* Switch input port. */
	OFPFW_DL_VLAN     = 1 << 1  /* VLAN id. */
	OFPFW_DL_SRC      = 1 << 2  /* Ethernet source address. */
	OFPFW_DL_DST      = 1 << 3  /* Ethernet destination address. */
	OFPFW_DL_TYPE     = 1 << 4  /* Ethernet frame type. */
	OFPFW_NW_PROTO    = 1 << 5  /* IP protocol. */
	OFPFW_TP_SRC      = 1 << 6  /* TCP/UDP source port. */
	OFPFW_TP_DST      = 1 << 7  /* TCP/UDP destination port. */
	OFPFW_DL_VLAN_PCP = 1 << 20 /* VLAN priority. */
	OFPFW_NW_TOS      = 1 << 21 /* IP ToS (DSCP field, 6 bits). */

	OFPFW_NW_SRC_SHIFT = 8
	OFPFW_NW_DST_SHIFT = 14
)

const (
	OFPFF_SEND_FLOW_REM = 1 << 0 /* Send flow removed message when flow expires or is deleted. */
	OFPFF_CHECK_OVERLAP = 1 << 1 /* Check for overlapping entries first. */
)

const (
	OFP_NO_BUFFER = 0xffffffff
)

const (
	OFPFC_ADD           = 0 /* New flow. */
	OFPFC_MODIFY        = 1 /* Modify all matching flows. */
	OFPFC_MODIFY_STRICT = 2 /* Modify entry strictly matching wildcards and priority. */
	OFPFC_DELETE        = 3 /* Delete all matching flows. */
	OFPFC_DELETE_STRICT = 4 /* Delete entry strictly matching wildcards and priority. */
)

const (
	OFPC_FRAG_NORMAL = 0 /* No special handling for fragments. */
)

const (
	OFPR_NO_MATCH = 0 /* No matching flow. */
	OFPR_ACTION   = 1 /* Action explicitly output to controller. */
)

const (
	OFPPR_ADD    = 0
	OFPPR_DELETE = 1
	OFPPR_MODIFY = 2
)

const (
	OFPPS_LINK_DOWN = 1 << 0
)

const (
	OFPET_HELLO_FAILED    = 0
	OFPET_BAD_REQUEST     = 1
	OFPET_BAD_ACTION      = 2
	OFPET_FLOW_MOD_FAILED = 3
	OFPET_PORT_MOD_FAILED = 4
	OFPET_QUEUE_OP_FAILED = 5
)

const (
	OFPFMFC_ALL_TABLES_FULL   = 0 /* Flow not added because of full tables. */
	OFPFMFC_OVERLAP           = 1 /* Attempted to add overlapping flow with CHECK_OVERLAP flag set. */
	OFPFMFC_EPERM             = 2 /* Permissions error. */
	OFPFMFC_BAD_EMERG_TIMEOUT = 3 /* Flow not added because of non-zero idle/hard timeout. */
	OFPFMFC_BAD_COMMAND       = 4 /* Unknown command. */
	OFPFMFC_UNSUPPORTED       = 5 /* Unsupported action list. */
)
